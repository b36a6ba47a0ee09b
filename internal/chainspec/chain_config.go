// Package chainspec describes the fork schedule and merge parameters a
// fenrir execution-layer node is configured with. Engine API components
// consult it to decide whether a given payload timestamp falls after a
// hard fork, and to learn the terminal total difficulty recorded for the
// proof-of-stake transition.
package chainspec

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Hardfork names a named activation point in the schedule.
type Hardfork int

const (
	// Paris is the merge: proof-of-stake activation. It is gated by total
	// difficulty rather than by timestamp.
	Paris Hardfork = iota
	// Shanghai introduced withdrawals (EIP-4895).
	Shanghai
	// Cancun introduced blob transactions (EIP-4844).
	Cancun
	// Prague introduced the unified execution-layer request queue (EIP-7685).
	Prague
)

func (f Hardfork) String() string {
	switch f {
	case Paris:
		return "paris"
	case Shanghai:
		return "shanghai"
	case Cancun:
		return "cancun"
	case Prague:
		return "prague"
	default:
		return fmt.Sprintf("hardfork(%d)", int(f))
	}
}

// ForkRecord describes a single fork's activation condition.
type ForkRecord struct {
	Name      Hardfork
	Timestamp *uint64 // nil for forks gated by something other than timestamp, or not yet scheduled
}

// ChainConfig holds chain-level configuration for fork scheduling. Forks at
// or after the merge are activated by timestamp; Paris itself is activated
// by total difficulty and is recorded separately.
type ChainConfig struct {
	ChainID       uint64
	ShanghaiTime  *uint64
	CancunTime    *uint64
	PragueTime    *uint64

	// TerminalTotalDifficulty is the total difficulty at which Paris
	// activates. A nil value means this chain has no configured merge
	// point and the transition-configuration reconciler cannot be used
	// against it.
	TerminalTotalDifficulty *uint256.Int
}

func isTimestampForked(forkTime *uint64, ts uint64) bool {
	if forkTime == nil {
		return false
	}
	return *forkTime <= ts
}

// ActiveAtTimestamp reports whether the named fork is active at the given
// block timestamp. Paris has no timestamp activation condition and always
// reports active, since every fork this chain config tracks beyond Paris
// assumes the merge has already happened.
func (c *ChainConfig) ActiveAtTimestamp(fork Hardfork, ts uint64) bool {
	switch fork {
	case Paris:
		return true
	case Shanghai:
		return isTimestampForked(c.ShanghaiTime, ts)
	case Cancun:
		return isTimestampForked(c.CancunTime, ts)
	case Prague:
		return isTimestampForked(c.PragueTime, ts)
	default:
		return false
	}
}

// Fork returns the activation record for the named fork.
func (c *ChainConfig) Fork(fork Hardfork) ForkRecord {
	switch fork {
	case Shanghai:
		return ForkRecord{Name: Shanghai, Timestamp: c.ShanghaiTime}
	case Cancun:
		return ForkRecord{Name: Cancun, Timestamp: c.CancunTime}
	case Prague:
		return ForkRecord{Name: Prague, Timestamp: c.PragueTime}
	default:
		return ForkRecord{Name: fork}
	}
}

// IsShanghai returns whether the given block time is at or past the
// Shanghai fork. Equivalent to ActiveAtTimestamp(Shanghai, time).
func (c *ChainConfig) IsShanghai(time uint64) bool {
	return c.ActiveAtTimestamp(Shanghai, time)
}

// ParisTTD returns the configured terminal total difficulty, and whether
// the chain has one configured at all.
func (c *ChainConfig) ParisTTD() (*uint256.Int, bool) {
	if c.TerminalTotalDifficulty == nil {
		return nil, false
	}
	return c.TerminalTotalDifficulty, true
}

func newUint64(v uint64) *uint64 { return &v }

// MainnetConfig is the chain config for Ethereum mainnet.
var MainnetConfig = &ChainConfig{
	ChainID:                 1,
	ShanghaiTime:            newUint64(1681338455),
	CancunTime:              newUint64(1710338135),
	PragueTime:              nil,
	TerminalTotalDifficulty: uint256.MustFromDecimal("58750000000000000000000"),
}

// TestConfig is a chain config with all timestamp-gated forks active at
// genesis (time 0) and a small, easily hand-checked terminal total
// difficulty.
var TestConfig = &ChainConfig{
	ChainID:                 1337,
	ShanghaiTime:            newUint64(0),
	CancunTime:              newUint64(0),
	PragueTime:              newUint64(0),
	TerminalTotalDifficulty: uint256.NewInt(58750000000000000),
}
