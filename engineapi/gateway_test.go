package engineapi

import (
	"context"
	"errors"
	"testing"

	"github.com/fenrir-eth/fenrir/internal/chainspec"
)

// fakeChannel is a BeaconMessageChannel double that records every message
// it is sent and, optionally, synchronously answers it.
type fakeChannel struct {
	sendErr  error
	messages []BeaconMessage
	respond  func(BeaconMessage)
}

func (f *fakeChannel) Send(msg BeaconMessage) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, msg)
	if f.respond != nil {
		f.respond(msg)
	}
	return nil
}

// TestGatewayForwardsNewPayload is scenario S1: invoking newPayloadV1 with
// a default payload at timestamp 0 produces exactly one NewPayload message
// on the outbound channel, with the embedded payload equal to the input.
func TestGatewayForwardsNewPayload(t *testing.T) {
	ch := &fakeChannel{
		respond: func(msg BeaconMessage) {
			m := msg.(NewPayloadMessage)
			m.Reply <- NewPayloadReply{Status: PayloadStatus{Status: StatusValid}}
		},
	}
	gw := NewGateway(&chainspec.ChainConfig{}, ch)

	payload := &ExecutionPayload{Timestamp: 0}
	status, err := gw.NewPayload(context.Background(), V1, payload)
	if err != nil {
		t.Fatalf("NewPayload returned error: %v", err)
	}
	if status.Status != StatusValid {
		t.Fatalf("status = %v, want VALID", status.Status)
	}

	if len(ch.messages) != 1 {
		t.Fatalf("channel received %d messages, want 1", len(ch.messages))
	}
	got := ch.messages[0].(NewPayloadMessage)
	if got.Payload != payload {
		t.Fatalf("forwarded payload %p != input payload %p", got.Payload, payload)
	}
}

func TestGatewayForwardsForkchoiceUpdated(t *testing.T) {
	ch := &fakeChannel{
		respond: func(msg BeaconMessage) {
			m := msg.(ForkchoiceUpdatedMessage)
			m.Reply <- ForkchoiceUpdatedReply{Result: ForkchoiceUpdated{
				PayloadStatus: PayloadStatus{Status: StatusValid},
			}}
		},
	}
	gw := NewGateway(&chainspec.ChainConfig{}, ch)

	state := ForkchoiceState{}
	result, err := gw.ForkchoiceUpdated(context.Background(), V1, state, nil)
	if err != nil {
		t.Fatalf("ForkchoiceUpdated returned error: %v", err)
	}
	if result.PayloadStatus.Status != StatusValid {
		t.Fatalf("status = %v, want VALID", result.PayloadStatus.Status)
	}
	if len(ch.messages) != 1 {
		t.Fatalf("channel received %d messages, want 1", len(ch.messages))
	}
	got := ch.messages[0].(ForkchoiceUpdatedMessage)
	if got.State != state {
		t.Fatalf("forwarded state %+v != input state %+v", got.State, state)
	}
}

// TestGatewaySchemaRejectionNeverSends checks that a schema failure short
// circuits before anything reaches the channel.
func TestGatewaySchemaRejectionNeverSends(t *testing.T) {
	ch := &fakeChannel{}
	gw := NewGateway(&chainspec.ChainConfig{ShanghaiTime: ptrU64(0)}, ch)

	badPayload := &ExecutionPayload{Timestamp: 10}
	_, err := gw.NewPayload(context.Background(), V2, badPayload)
	if err != ErrNoWithdrawalsPostShanghai {
		t.Fatalf("err = %v, want ErrNoWithdrawalsPostShanghai", err)
	}
	if len(ch.messages) != 0 {
		t.Fatalf("channel received %d messages, want 0", len(ch.messages))
	}
}

func TestGatewaySendFailureIsEngineUnavailable(t *testing.T) {
	ch := &fakeChannel{sendErr: errors.New("channel closed")}
	gw := NewGateway(&chainspec.ChainConfig{}, ch)

	_, err := gw.NewPayload(context.Background(), V1, &ExecutionPayload{})
	if err != ErrEngineUnavailable {
		t.Fatalf("err = %v, want ErrEngineUnavailable", err)
	}
}

func TestGatewayReplyDroppedIsEngineUnavailable(t *testing.T) {
	ch := &fakeChannel{
		respond: func(msg BeaconMessage) {
			m := msg.(NewPayloadMessage)
			close(m.Reply)
		},
	}
	gw := NewGateway(&chainspec.ChainConfig{}, ch)

	_, err := gw.NewPayload(context.Background(), V1, &ExecutionPayload{})
	if err != ErrEngineUnavailable {
		t.Fatalf("err = %v, want ErrEngineUnavailable", err)
	}
}

func TestGatewayBeaconErrorPassthrough(t *testing.T) {
	beaconErr := errors.New("execution engine busy")
	ch := &fakeChannel{
		respond: func(msg BeaconMessage) {
			m := msg.(NewPayloadMessage)
			m.Reply <- NewPayloadReply{Err: beaconErr}
		},
	}
	gw := NewGateway(&chainspec.ChainConfig{}, ch)

	_, err := gw.NewPayload(context.Background(), V1, &ExecutionPayload{})
	if err != beaconErr {
		t.Fatalf("err = %v, want %v", err, beaconErr)
	}
}
