// Package beacon provides the transport-side half of the Engine API's
// outbound message channel: a single-producer stream of
// engineapi.BeaconMessage values that the beacon consensus engine
// consumes and replies to via each message's embedded one-shot slot.
package beacon

import (
	"errors"
	"sync"

	"github.com/fenrir-eth/fenrir/engineapi"
)

// ErrClosed is returned by Send once the channel has been closed.
var ErrClosed = errors.New("beacon message channel closed")

// Channel is a buffered engineapi.BeaconMessageChannel. The core sends on
// it; a consumer loop elsewhere drains Messages() and answers each
// message's reply slot exactly once.
type Channel struct {
	messages  chan engineapi.BeaconMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewChannel returns a Channel with the given send buffer size. A size of
// 0 makes Send block until a consumer is actively draining Messages.
func NewChannel(buffer int) *Channel {
	return &Channel{
		messages: make(chan engineapi.BeaconMessage, buffer),
		done:     make(chan struct{}),
	}
}

// Send implements engineapi.BeaconMessageChannel.
func (c *Channel) Send(msg engineapi.BeaconMessage) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.messages <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Messages returns the receive side of the channel, for the consensus
// engine's consumer loop.
func (c *Channel) Messages() <-chan engineapi.BeaconMessage {
	return c.messages
}

// Close shuts the channel down. Subsequent Send calls return ErrClosed.
// Any reply slots already handed to the consumer are the consumer's
// responsibility to resolve or drop.
func (c *Channel) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

var _ engineapi.BeaconMessageChannel = (*Channel)(nil)
