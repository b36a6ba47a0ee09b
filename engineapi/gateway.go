package engineapi

import (
	"context"

	"github.com/fenrir-eth/fenrir/internal/chainspec"
)

// BeaconMessage is the sum type of requests the gateway emits on the
// outbound channel to the consensus engine. Exactly one concrete type
// implements it per request kind; a channel carrying this interface plays
// the role a tagged union would in a language with sum types.
type BeaconMessage interface {
	isBeaconMessage()
}

// NewPayloadMessage asks the consensus engine to import and validate a
// payload. Reply is a freshly allocated, single-use slot: it must be
// buffered with capacity 1 so the consensus engine's send never blocks on
// a caller that has gone away, and it must never be reused across
// requests.
type NewPayloadMessage struct {
	Payload *ExecutionPayload
	Reply   chan<- NewPayloadReply
}

func (NewPayloadMessage) isBeaconMessage() {}

// NewPayloadReply carries either the consensus engine's verdict or an
// error it encountered while producing one.
type NewPayloadReply struct {
	Status PayloadStatus
	Err    error
}

// ForkchoiceUpdatedMessage asks the consensus engine to update its
// canonical head and, if Attributes is non-nil, to begin building a new
// payload against it.
type ForkchoiceUpdatedMessage struct {
	State      ForkchoiceState
	Attributes *PayloadAttributes
	Reply      chan<- ForkchoiceUpdatedReply
}

func (ForkchoiceUpdatedMessage) isBeaconMessage() {}

// ForkchoiceUpdatedReply carries either the consensus engine's result or
// an error it encountered while producing one.
type ForkchoiceUpdatedReply struct {
	Result ForkchoiceUpdated
	Err    error
}

// BeaconMessageChannel is the send-only endpoint to the beacon consensus
// engine. Implementations must be safe for concurrent use: multiple API
// calls send on it independently, each with its own reply slot.
//
// Send returns a non-nil error only when the message could not be
// delivered at all (the consensus engine has shut down). A delivered
// message's outcome always arrives on its own Reply channel, never as a
// Send error.
type BeaconMessageChannel interface {
	Send(msg BeaconMessage) error
}

// Gateway is the Beacon Message Gateway: it builds NewPayload /
// ForkchoiceUpdated requests, emits them on the outbound channel with a
// one-shot reply handle, awaits the reply, and translates transport
// failures into API errors.
type Gateway struct {
	spec    *chainspec.ChainConfig
	channel BeaconMessageChannel
}

// NewGateway constructs a Gateway bound to the given chain spec (for
// schema validation) and outbound channel (for dispatch).
func NewGateway(spec *chainspec.ChainConfig, channel BeaconMessageChannel) *Gateway {
	return &Gateway{spec: spec, channel: channel}
}

// NewPayload validates the payload's withdrawals presence for the given
// version, then forwards it to the consensus engine and awaits its
// verdict. On schema rejection the gateway never sends.
func (g *Gateway) NewPayload(ctx context.Context, version Version, payload *ExecutionPayload) (PayloadStatus, error) {
	if err := validateWithdrawalsPresence(g.spec, version, payload.Timestamp, payload.HasWithdrawals()); err != nil {
		return PayloadStatus{}, err
	}

	reply := make(chan NewPayloadReply, 1)
	if err := g.channel.Send(NewPayloadMessage{Payload: payload, Reply: reply}); err != nil {
		return PayloadStatus{}, ErrEngineUnavailable
	}

	select {
	case res, ok := <-reply:
		if !ok {
			return PayloadStatus{}, ErrEngineUnavailable
		}
		if res.Err != nil {
			return PayloadStatus{}, res.Err
		}
		return res.Status, nil
	case <-ctx.Done():
		return PayloadStatus{}, ctx.Err()
	}
}

// ForkchoiceUpdated validates attrs's withdrawals presence (if attrs is
// non-nil) for the given version, then forwards the forkchoice state and
// attrs to the consensus engine and awaits its result.
func (g *Gateway) ForkchoiceUpdated(ctx context.Context, version Version, state ForkchoiceState, attrs *PayloadAttributes) (ForkchoiceUpdated, error) {
	if attrs != nil {
		if err := validateWithdrawalsPresence(g.spec, version, attrs.Timestamp, attrs.HasWithdrawals()); err != nil {
			return ForkchoiceUpdated{}, err
		}
	}

	reply := make(chan ForkchoiceUpdatedReply, 1)
	if err := g.channel.Send(ForkchoiceUpdatedMessage{State: state, Attributes: attrs, Reply: reply}); err != nil {
		return ForkchoiceUpdated{}, ErrEngineUnavailable
	}

	select {
	case res, ok := <-reply:
		if !ok {
			return ForkchoiceUpdated{}, ErrEngineUnavailable
		}
		if res.Err != nil {
			return ForkchoiceUpdated{}, res.Err
		}
		return res.Result, nil
	case <-ctx.Done():
		return ForkchoiceUpdated{}, ctx.Err()
	}
}
