package engineapi

import (
	"context"

	"github.com/fenrir-eth/fenrir/internal/ethtypes"
)

// BlockProvider is the execution layer's block store, consulted by the
// History Service and the Transition Configuration Reconciler. It must be
// safe for concurrent use.
type BlockProvider interface {
	// Block looks up a block by number or by hash. ok=false means the
	// block is not known locally; this is distinct from an error, which
	// signals a provider failure (disk, network, corruption).
	Block(ctx context.Context, id ethtypes.BlockID) (block *ethtypes.Block, ok bool, err error)

	// BlockHashAt resolves the canonical block hash at the given number.
	// ok=false means no block is known at that number.
	BlockHashAt(ctx context.Context, number uint64) (hash ethtypes.Hash, ok bool, err error)
}
