package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/fenrir-eth/fenrir/internal/beacon"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"github.com/fenrir-eth/fenrir/internal/log"
	"github.com/fenrir-eth/fenrir/internal/memstore"
)

func TestStubConsensusEngineAnswersNewPayload(t *testing.T) {
	channel := beacon.NewChannel(1)
	defer channel.Close()
	blocks := memstore.NewBlockStore()
	payloads := memstore.NewPayloadStore(8)
	engine := newStubConsensusEngine(channel, blocks, payloads, log.New(slog.LevelError))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.run(ctx)

	reply := make(chan engineapi.NewPayloadReply, 1)
	hash := ethtypes.HexToHash("0x01")
	if err := channel.Send(engineapi.NewPayloadMessage{
		Payload: &engineapi.ExecutionPayload{BlockNumber: 1, BlockHash: hash},
		Reply:   reply,
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case res := <-reply:
		if res.Status.Status != engineapi.StatusValid {
			t.Fatalf("status = %v, want VALID", res.Status.Status)
		}
		if res.Status.LatestValidHash == nil || *res.Status.LatestValidHash != hash {
			t.Fatalf("latestValidHash = %v, want %v", res.Status.LatestValidHash, hash)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}

	if _, ok, _ := blocks.Block(context.Background(), ethtypes.ByNumber(1)); !ok {
		t.Fatal("imported payload was not stored")
	}
}

func TestStubConsensusEngineRejectsMalformedWithdrawal(t *testing.T) {
	channel := beacon.NewChannel(1)
	defer channel.Close()
	blocks := memstore.NewBlockStore()
	payloads := memstore.NewPayloadStore(8)
	engine := newStubConsensusEngine(channel, blocks, payloads, log.New(slog.LevelError))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.run(ctx)

	reply := make(chan engineapi.NewPayloadReply, 1)
	if err := channel.Send(engineapi.NewPayloadMessage{
		Payload: &engineapi.ExecutionPayload{
			BlockNumber: 2,
			Withdrawals: []*ethtypes.Withdrawal{{Address: ethtypes.Address{}}},
		},
		Reply: reply,
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case res := <-reply:
		if res.Status.Status != engineapi.StatusInvalid {
			t.Fatalf("status = %v, want INVALID", res.Status.Status)
		}
		if res.Status.ValidationError == nil {
			t.Fatal("expected a validation error message")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestStubConsensusEngineForkchoiceUpdatedStartsBuild(t *testing.T) {
	channel := beacon.NewChannel(1)
	defer channel.Close()
	blocks := memstore.NewBlockStore()
	payloads := memstore.NewPayloadStore(8)
	engine := newStubConsensusEngine(channel, blocks, payloads, log.New(slog.LevelError))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.run(ctx)

	reply := make(chan engineapi.ForkchoiceUpdatedReply, 1)
	attrs := &engineapi.PayloadAttributes{Timestamp: 1234}
	if err := channel.Send(engineapi.ForkchoiceUpdatedMessage{Attributes: attrs, Reply: reply}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case res := <-reply:
		if res.Result.PayloadStatus.Status != engineapi.StatusValid {
			t.Fatalf("status = %v, want VALID", res.Result.PayloadStatus.Status)
		}
		if res.Result.PayloadID == nil {
			t.Fatal("expected a PayloadID when Attributes is set")
		}
		artifact, ok, err := payloads.Get(context.Background(), *res.Result.PayloadID)
		if err != nil || !ok {
			t.Fatalf("Get(%v) = %v, %v, %v", *res.Result.PayloadID, artifact, ok, err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

func TestStubConsensusEngineForkchoiceUpdatedWithoutAttributes(t *testing.T) {
	channel := beacon.NewChannel(1)
	defer channel.Close()
	engine := newStubConsensusEngine(channel, memstore.NewBlockStore(), memstore.NewPayloadStore(8), log.New(slog.LevelError))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.run(ctx)

	reply := make(chan engineapi.ForkchoiceUpdatedReply, 1)
	if err := channel.Send(engineapi.ForkchoiceUpdatedMessage{Reply: reply}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case res := <-reply:
		if res.Result.PayloadID != nil {
			t.Fatal("expected no PayloadID when Attributes is nil")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reply")
	}
}
