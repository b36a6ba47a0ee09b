package main

import (
	"context"
	"encoding/binary"
	"sync/atomic"

	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/fenrir-eth/fenrir/internal/beacon"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"github.com/fenrir-eth/fenrir/internal/log"
	"github.com/fenrir-eth/fenrir/internal/memstore"
	"github.com/holiman/uint256"
)

// stubConsensusEngine is the demonstration binary's beacon consensus
// engine: it drains the beacon.Channel and answers every message's reply
// slot, so that engineapi.Gateway's NewPayload/ForkchoiceUpdated calls
// have something on the other end of the channel to respond. A real
// deployment replaces this with an actual consensus client talking to
// fenrir over the authenticated Engine API endpoint; this stub imports what
// it is given and reports VALID, except that a payload whose block the
// block store rejects (a malformed withdrawal) is reported INVALID with the
// store's error as its validation error. That is sufficient to exercise the
// full request/reply round trip end to end.
type stubConsensusEngine struct {
	channel  *beacon.Channel
	blocks   *memstore.BlockStore
	payloads *memstore.PayloadStore
	logger   *log.Logger
	nextID   uint64
}

func newStubConsensusEngine(channel *beacon.Channel, blocks *memstore.BlockStore, payloads *memstore.PayloadStore, logger *log.Logger) *stubConsensusEngine {
	return &stubConsensusEngine{channel: channel, blocks: blocks, payloads: payloads, logger: logger}
}

// run drains messages until ctx is canceled. beacon.Channel.Close does not
// close the Messages stream, so closing the channel alone does not end run.
func (e *stubConsensusEngine) run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-e.channel.Messages():
			if !ok {
				return
			}
			e.handle(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (e *stubConsensusEngine) handle(msg engineapi.BeaconMessage) {
	switch m := msg.(type) {
	case engineapi.NewPayloadMessage:
		m.Reply <- engineapi.NewPayloadReply{Status: e.importPayload(m.Payload)}
	case engineapi.ForkchoiceUpdatedMessage:
		m.Reply <- engineapi.ForkchoiceUpdatedReply{Result: e.updateForkchoice(m.Attributes)}
	default:
		e.logger.Warn("stub consensus engine received unknown message type")
	}
}

func (e *stubConsensusEngine) importPayload(payload *engineapi.ExecutionPayload) engineapi.PayloadStatus {
	block := &ethtypes.Block{
		Header: &ethtypes.Header{
			ParentHash: payload.ParentHash,
			Number:     payload.BlockNumber,
			Timestamp:  payload.Timestamp,
			Hash:       payload.BlockHash,
		},
		Body: &ethtypes.Body{
			Transactions: payload.Transactions,
			Withdrawals:  payload.Withdrawals,
		},
	}
	if err := e.blocks.Insert(block); err != nil {
		e.logger.Warn("rejecting payload", "number", payload.BlockNumber, "error", err)
		msg := err.Error()
		return engineapi.PayloadStatus{Status: engineapi.StatusInvalid, ValidationError: &msg}
	}
	hash := payload.BlockHash
	return engineapi.PayloadStatus{Status: engineapi.StatusValid, LatestValidHash: &hash}
}

// updateForkchoice always reports VALID for the requested head. When attrs
// is non-nil it starts (synchronously, for this stub) a trivial build job
// and returns its PayloadID so getPayloadV1/V2 has something to serve.
func (e *stubConsensusEngine) updateForkchoice(attrs *engineapi.PayloadAttributes) engineapi.ForkchoiceUpdated {
	result := engineapi.ForkchoiceUpdated{PayloadStatus: engineapi.PayloadStatus{Status: engineapi.StatusValid}}
	if attrs == nil {
		return result
	}

	id := e.allocatePayloadID()
	artifact := &memstore.Artifact{
		Payload: &engineapi.ExecutionPayload{
			Timestamp:     attrs.Timestamp,
			PrevRandao:    attrs.PrevRandao,
			FeeRecipient:  attrs.SuggestedFeeRecipient,
			BaseFeePerGas: uint256.NewInt(0),
			Withdrawals:   attrs.Withdrawals,
		},
		Value: uint256.NewInt(0),
	}
	e.payloads.Put(id, artifact)
	result.PayloadID = &id
	return result
}

func (e *stubConsensusEngine) allocatePayloadID() engineapi.PayloadID {
	n := atomic.AddUint64(&e.nextID, 1)
	var id engineapi.PayloadID
	binary.BigEndian.PutUint64(id[:], n)
	return id
}
