// Package engineapi implements the Engine API dispatcher: the narrow
// JSON-RPC-agnostic surface by which a consensus-layer client directs
// fenrir's execution layer to import payloads, update fork choice, build
// blocks for proposal, and reconcile merge configuration.
//
// This package is a translator, validator, and correlator. It does not
// execute transactions, persist state, manage peers, or assemble blocks;
// those live behind the BeaconMessageChannel, PayloadStore, and
// BlockProvider collaborator interfaces it consumes.
package engineapi

import (
	"fmt"

	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"github.com/holiman/uint256"
)

// Version selects which Engine API method generation a call was made
// through. The schema rules in the Version Validator are keyed on this.
type Version int

const (
	V1 Version = iota
	V2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	default:
		return fmt.Sprintf("version(%d)", int(v))
	}
}

// MaxPayloadBodiesLimit bounds a single getPayloadBodies request.
const MaxPayloadBodiesLimit = 1024

// PayloadID identifies an in-flight payload build job.
type PayloadID [8]byte

func (id PayloadID) String() string { return fmt.Sprintf("0x%x", id[:]) }

// ExecutionPayload is a serialized candidate block as exchanged with the
// consensus layer. Withdrawals is nil when the payload carries none; the
// Version Validator is what decides whether that is legal for a given
// call.
type ExecutionPayload struct {
	ParentHash    ethtypes.Hash
	FeeRecipient  ethtypes.Address
	StateRoot     ethtypes.Hash
	ReceiptsRoot  ethtypes.Hash
	LogsBloom     ethtypes.Bloom
	PrevRandao    ethtypes.Hash
	BlockNumber   uint64
	GasLimit      uint64
	GasUsed       uint64
	Timestamp     uint64
	ExtraData     []byte
	BaseFeePerGas *uint256.Int
	BlockHash     ethtypes.Hash
	Transactions  [][]byte
	Withdrawals   []*ethtypes.Withdrawal // nil iff the CL sent no withdrawals field
}

// HasWithdrawals reports whether the payload carries a withdrawals field at
// all (a non-nil, possibly empty, slice), as distinct from carrying none.
func (p *ExecutionPayload) HasWithdrawals() bool { return p.Withdrawals != nil }

// PayloadAttributes are the build parameters a CL supplies when directing
// the EL to start assembling a new payload for proposal.
type PayloadAttributes struct {
	Timestamp             uint64
	PrevRandao            ethtypes.Hash
	SuggestedFeeRecipient ethtypes.Address
	Withdrawals           []*ethtypes.Withdrawal // nil iff the CL sent no withdrawals field
}

// HasWithdrawals reports whether the attributes carry a withdrawals field.
func (a *PayloadAttributes) HasWithdrawals() bool { return a.Withdrawals != nil }

// ForkchoiceState is the CL's declaration of head/safe/finalized. It is
// opaque to this package and forwarded verbatim to the consensus engine.
type ForkchoiceState struct {
	HeadBlockHash      ethtypes.Hash
	SafeBlockHash      ethtypes.Hash
	FinalizedBlockHash ethtypes.Hash
}

// PayloadStatusTag enumerates the outcomes the consensus engine may report
// for newPayload / forkchoiceUpdated.
type PayloadStatusTag string

const (
	StatusValid            PayloadStatusTag = "VALID"
	StatusInvalid          PayloadStatusTag = "INVALID"
	StatusSyncing          PayloadStatusTag = "SYNCING"
	StatusAccepted         PayloadStatusTag = "ACCEPTED"
	StatusInvalidBlockHash PayloadStatusTag = "INVALID_BLOCK_HASH"
)

// PayloadStatus is the consensus engine's verdict on a payload or
// forkchoice update. It is supplied by the consensus engine; this package
// never synthesizes one itself.
type PayloadStatus struct {
	Status          PayloadStatusTag
	LatestValidHash *ethtypes.Hash
	ValidationError *string
}

// ForkchoiceUpdated is the result of engine_forkchoiceUpdated: the payload
// status, plus a PayloadID when the call also requested a build job.
type ForkchoiceUpdated struct {
	PayloadStatus PayloadStatus
	PayloadID     *PayloadID
}

// ExecutionPayloadEnvelope is the V2 shape returned by getPayload: the
// payload together with its declared value to the proposer.
type ExecutionPayloadEnvelope struct {
	ExecutionPayload *ExecutionPayload
	BlockValue       *uint256.Int
}

// PayloadBody is one entry of an ExecutionPayloadBodies response. A nil
// *PayloadBody in the containing slice means "unknown locally", distinct
// from a non-nil body with zero transactions.
type PayloadBody struct {
	Transactions [][]byte
	Ommers       []*ethtypes.Header
	Withdrawals  []*ethtypes.Withdrawal
}

// TransitionConfiguration is the merge handshake triple exchanged by
// engine_exchangeTransitionConfiguration.
type TransitionConfiguration struct {
	TerminalTotalDifficulty *uint256.Int
	TerminalBlockHash       ethtypes.Hash
	TerminalBlockNumber     uint64
}

// Capabilities is the list of Engine API method names this service
// implements, returned verbatim from engine_exchangeCapabilities
// regardless of what the CL advertises.
var Capabilities = []string{
	"engine_newPayloadV1",
	"engine_newPayloadV2",
	"engine_forkchoiceUpdatedV1",
	"engine_forkchoiceUpdatedV2",
	"engine_getPayloadV1",
	"engine_getPayloadV2",
	"engine_getPayloadBodiesByHashV1",
	"engine_getPayloadBodiesByRangeV1",
	"engine_exchangeTransitionConfigurationV1",
	"engine_exchangeCapabilitiesV1",
}
