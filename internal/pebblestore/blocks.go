// Package pebblestore provides a persistent, pebble-backed alternative to
// internal/memstore's BlockStore, for deployments that need block history
// to survive a process restart. It implements the same
// engineapi.BlockProvider contract.
package pebblestore

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
)

const (
	numberKeyPrefix     = "n:"
	hashKeyPrefix       = "h:"
	withdrawalKeyPrefix = "w:"
)

// BlockStore is a pebble-backed implementation of engineapi.BlockProvider.
// Each block is written twice, once under a number key and once under a
// hash key, so both lookup paths the History Service and Reconciler need
// are single point-reads.
type BlockStore struct {
	db *pebble.DB
}

// Open creates or opens a pebble database at dir and returns a BlockStore
// backed by it. The caller is responsible for calling Close.
func Open(dir string) (*BlockStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble db at %s: %w", dir, err)
	}
	return &BlockStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *BlockStore) Close() error {
	return s.db.Close()
}

// Insert persists block under both its number and hash keys, and indexes
// each of its withdrawals under its RLP-hash for WithdrawalByHash lookups.
// A malformed withdrawal rejects the whole block.
func (s *BlockStore) Insert(block *ethtypes.Block) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(block); err != nil {
		return fmt.Errorf("encode block %d: %w", block.Header.Number, err)
	}
	payload := buf.Bytes()

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(numberKey(block.Header.Number), payload, nil); err != nil {
		return err
	}
	if err := batch.Set(hashKey(block.Header.Hash), payload, nil); err != nil {
		return err
	}

	if block.Body != nil {
		for i, w := range block.Body.Withdrawals {
			if err := ethtypes.ValidateWithdrawal(w); err != nil {
				return fmt.Errorf("block %d withdrawal %d: %w", block.Header.Number, i, err)
			}
			key := withdrawalKey(ethtypes.WithdrawalHash(w))
			if err := batch.Set(key, ethtypes.EncodeWithdrawal(w), nil); err != nil {
				return err
			}
		}
	}

	return batch.Commit(pebble.Sync)
}

// WithdrawalByHash looks up a single withdrawal by the keccak256 hash of
// its RLP encoding, across all blocks inserted so far.
func (s *BlockStore) WithdrawalByHash(ctx context.Context, hash ethtypes.Hash) (*ethtypes.Withdrawal, bool, error) {
	val, closer, err := s.db.Get(withdrawalKey(hash))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	w, err := ethtypes.DecodeWithdrawal(val)
	if err != nil {
		return nil, false, err
	}
	return w, true, nil
}

// Block implements engineapi.BlockProvider.
func (s *BlockStore) Block(ctx context.Context, id ethtypes.BlockID) (*ethtypes.Block, bool, error) {
	var key []byte
	switch {
	case id.Number != nil:
		key = numberKey(*id.Number)
	case id.Hash != nil:
		key = hashKey(*id.Hash)
	default:
		return nil, false, nil
	}
	return s.get(key)
}

// BlockHashAt implements engineapi.BlockProvider.
func (s *BlockStore) BlockHashAt(ctx context.Context, number uint64) (ethtypes.Hash, bool, error) {
	block, ok, err := s.get(numberKey(number))
	if err != nil || !ok {
		return ethtypes.Hash{}, ok, err
	}
	return block.Header.Hash, true, nil
}

func (s *BlockStore) get(key []byte) (*ethtypes.Block, bool, error) {
	val, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	var block ethtypes.Block
	if err := gob.NewDecoder(bytes.NewReader(val)).Decode(&block); err != nil {
		return nil, false, fmt.Errorf("decode block: %w", err)
	}
	return &block, true, nil
}

func numberKey(n uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", numberKeyPrefix, n))
}

func hashKey(h ethtypes.Hash) []byte {
	return append([]byte(hashKeyPrefix), h[:]...)
}

func withdrawalKey(h ethtypes.Hash) []byte {
	return append([]byte(withdrawalKeyPrefix), h[:]...)
}

var _ engineapi.BlockProvider = (*BlockStore)(nil)
