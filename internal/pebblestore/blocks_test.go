package pebblestore

import (
	"context"
	"testing"

	"github.com/fenrir-eth/fenrir/internal/ethtypes"
)

func TestBlockStoreInsertAndLookup(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	hash := ethtypes.HexToHash("0x01")
	block := &ethtypes.Block{
		Header: &ethtypes.Header{Number: 42, Hash: hash, Timestamp: 100},
		Body:   &ethtypes.Body{Transactions: [][]byte{{0xaa}}},
	}
	if err := store.Insert(block); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ctx := context.Background()

	byNumber, ok, err := store.Block(ctx, ethtypes.ByNumber(42))
	if err != nil || !ok {
		t.Fatalf("Block(byNumber) = %v, %v, %v", byNumber, ok, err)
	}
	if byNumber.Header.Hash != hash {
		t.Errorf("byNumber hash = %v, want %v", byNumber.Header.Hash, hash)
	}

	byHash, ok, err := store.Block(ctx, ethtypes.ByHash(hash))
	if err != nil || !ok {
		t.Fatalf("Block(byHash) = %v, %v, %v", byHash, ok, err)
	}
	if byHash.Header.Number != 42 {
		t.Errorf("byHash number = %d, want 42", byHash.Header.Number)
	}

	gotHash, ok, err := store.BlockHashAt(ctx, 42)
	if err != nil || !ok || gotHash != hash {
		t.Fatalf("BlockHashAt = %v, %v, %v", gotHash, ok, err)
	}

	_, ok, err = store.Block(ctx, ethtypes.ByNumber(9999))
	if err != nil || ok {
		t.Fatalf("Block(missing) = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestBlockStoreIndexesWithdrawalsByHash(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	w := &ethtypes.Withdrawal{Index: 1, ValidatorIndex: 2, Address: ethtypes.HexToAddress("0x01"), Amount: 100}
	block := &ethtypes.Block{
		Header: &ethtypes.Header{Number: 1, Hash: ethtypes.HexToHash("0x02")},
		Body:   &ethtypes.Body{Withdrawals: []*ethtypes.Withdrawal{w}},
	}
	if err := store.Insert(block); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	ctx := context.Background()
	got, ok, err := store.WithdrawalByHash(ctx, ethtypes.WithdrawalHash(w))
	if err != nil || !ok {
		t.Fatalf("WithdrawalByHash = %v, %v, %v", got, ok, err)
	}
	if *got != *w {
		t.Errorf("WithdrawalByHash = %+v, want %+v", got, w)
	}

	_, ok, err = store.WithdrawalByHash(ctx, ethtypes.HexToHash("0xff"))
	if err != nil || ok {
		t.Fatalf("WithdrawalByHash(missing) = ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestBlockStoreInsertRejectsMalformedWithdrawal(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	block := &ethtypes.Block{
		Header: &ethtypes.Header{Number: 1, Hash: ethtypes.HexToHash("0x03")},
		Body:   &ethtypes.Body{Withdrawals: []*ethtypes.Withdrawal{{Address: ethtypes.Address{}}}},
	}
	if err := store.Insert(block); err == nil {
		t.Fatal("Insert succeeded with a zero-address withdrawal, want error")
	}
}
