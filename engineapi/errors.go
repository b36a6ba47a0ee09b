package engineapi

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"github.com/holiman/uint256"
)

// Schema errors: local, deterministic verdicts of the Version Validator.

// ErrWithdrawalsNotSupportedInV1 is returned when a V1 call carries a
// withdrawals field at all.
var ErrWithdrawalsNotSupportedInV1 = errors.New("withdrawals not supported in V1")

// ErrNoWithdrawalsPostShanghai is returned when a post-Shanghai payload or
// attributes object omits withdrawals.
var ErrNoWithdrawalsPostShanghai = errors.New("no withdrawals post-Shanghai")

// ErrHasWithdrawalsPreShanghai is returned when a V2 call carries
// withdrawals for a pre-Shanghai timestamp.
var ErrHasWithdrawalsPreShanghai = errors.New("withdrawals present pre-Shanghai")

// PayloadRequestTooLargeError reports a getPayloadBodies request whose
// requested length exceeds MaxPayloadBodiesLimit.
type PayloadRequestTooLargeError struct {
	Len uint64
}

func (e *PayloadRequestTooLargeError) Error() string {
	return fmt.Sprintf("payload bodies request too large: %d (limit %d)", e.Len, MaxPayloadBodiesLimit)
}

// InvalidBodiesRangeError reports a getPayloadBodiesByRange call whose
// (start, count) pair is degenerate.
type InvalidBodiesRangeError struct {
	Start uint64
	Count uint64
}

func (e *InvalidBodiesRangeError) Error() string {
	return fmt.Sprintf("invalid payload bodies range: start=%d count=%d", e.Start, e.Count)
}

// UnknownPayloadError reports that no build job exists for the given
// PayloadID in the payload store.
type UnknownPayloadError struct {
	ID PayloadID
}

func (e *UnknownPayloadError) Error() string {
	return fmt.Sprintf("unknown payload: %s", e.ID)
}

// TerminalTDError reports that the CL-supplied terminal total difficulty
// disagrees with the locally configured Paris TTD.
type TerminalTDError struct {
	Execution *uint256.Int
	Consensus *uint256.Int
}

func (e *TerminalTDError) Error() string {
	return fmt.Sprintf("terminal total difficulty mismatch: execution=%s consensus=%s", e.Execution, e.Consensus)
}

// TerminalBlockHashError reports that the CL-supplied terminal block hash
// does not match the locally stored block at the asserted number.
// Execution is nil when the local block store has nothing at that number.
type TerminalBlockHashError struct {
	Execution *ethtypes.Hash
	Consensus ethtypes.Hash
}

func (e *TerminalBlockHashError) Error() string {
	exec := "none"
	if e.Execution != nil {
		exec = e.Execution.Hex()
	}
	return fmt.Sprintf("terminal block hash mismatch: execution=%s consensus=%s", exec, e.Consensus.Hex())
}

// ErrEngineUnavailable is returned when the Beacon Message Gateway could
// not deliver a message to the consensus engine: the send failed, or the
// reply slot was dropped without a value. Both are fatal to the request;
// nothing is retried at this layer.
var ErrEngineUnavailable = errors.New("consensus engine unavailable")

// WrapInternal wraps a collaborator failure (block provider, payload
// store) so callers see a uniform error kind, while errors.Cause still
// recovers the underlying error for logging.
func WrapInternal(cause error) error {
	return errors.Wrapf(cause, "engineapi: internal collaborator error")
}

// IsUnknownPayload reports whether err is (or wraps) UnknownPayloadError.
func IsUnknownPayload(err error) bool {
	var target *UnknownPayloadError
	return errors.As(err, &target)
}
