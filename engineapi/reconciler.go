package engineapi

import (
	"context"

	"github.com/fenrir-eth/fenrir/internal/chainspec"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"github.com/holiman/uint256"
)

// Reconciler is the Transition Configuration Reconciler: it compares
// CL-supplied terminal proof-of-work parameters against the local
// chain-spec and block store, returning either the agreed triple or a
// precise mismatch error.
type Reconciler struct {
	ttd      *uint256.Int
	provider BlockProvider
}

// NewReconciler constructs a Reconciler bound to spec's configured Paris
// terminal total difficulty and the given block provider. It panics if
// spec has no Paris fork configured: this endpoint is only meaningful on a
// chain capable of the proof-of-stake transition, and a misconfigured
// deployment should fail loudly at startup rather than on the first CL
// handshake.
func NewReconciler(spec *chainspec.ChainConfig, provider BlockProvider) *Reconciler {
	ttd, ok := spec.ParisTTD()
	if !ok {
		panic("engineapi: chain spec has no Paris fork; the transition configuration reconciler requires a post-merge-capable chain")
	}
	return &Reconciler{ttd: ttd, provider: provider}
}

// ExchangeTransitionConfiguration reconciles config against the locally
// configured terminal total difficulty and, unless config's terminal
// block hash is the zero hash, against the block store.
func (r *Reconciler) ExchangeTransitionConfiguration(ctx context.Context, config TransitionConfiguration) (TransitionConfiguration, error) {
	if !r.ttd.Eq(config.TerminalTotalDifficulty) {
		return TransitionConfiguration{}, &TerminalTDError{Execution: r.ttd, Consensus: config.TerminalTotalDifficulty}
	}

	var zeroHash ethtypes.Hash
	if config.TerminalBlockHash == zeroHash {
		// The CL has no terminal block to assert yet; echo back just the
		// agreed TTD. Do not treat the zero hash as "missing block".
		return TransitionConfiguration{TerminalTotalDifficulty: r.ttd}, nil
	}

	localHash, ok, err := r.provider.BlockHashAt(ctx, config.TerminalBlockNumber)
	if err != nil {
		return TransitionConfiguration{}, WrapInternal(err)
	}
	if ok && localHash == config.TerminalBlockHash {
		return config, nil
	}

	var execution *ethtypes.Hash
	if ok {
		execution = &localHash
	}
	return TransitionConfiguration{}, &TerminalBlockHashError{Execution: execution, Consensus: config.TerminalBlockHash}
}
