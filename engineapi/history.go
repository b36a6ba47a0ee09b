package engineapi

import (
	"context"

	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"golang.org/x/sync/errgroup"
)

// HistoryService serves payload bodies by number-range or hash-list
// against the execution-layer block store, enforcing the size cap and
// producing sparse results: a nil entry means the block is unknown
// locally, and is semantically distinct from a present-but-empty body.
type HistoryService struct {
	provider BlockProvider
}

// NewHistoryService constructs a HistoryService over the given block
// provider collaborator.
func NewHistoryService(provider BlockProvider) *HistoryService {
	return &HistoryService{provider: provider}
}

// GetPayloadBodiesByRange returns count payload bodies for block numbers
// start..start+count (exclusive upper bound). Entry i of the result
// corresponds to block start+i.
func (h *HistoryService) GetPayloadBodiesByRange(ctx context.Context, start, count uint64) ([]*PayloadBody, error) {
	if count > MaxPayloadBodiesLimit {
		return nil, &PayloadRequestTooLargeError{Len: count}
	}
	if start == 0 || count == 0 {
		return nil, &InvalidBodiesRangeError{Start: start, Count: count}
	}

	results := make([]*PayloadBody, count)
	g, gctx := errgroup.WithContext(ctx)
	for i := uint64(0); i < count; i++ {
		i := i
		number := start + i
		g.Go(func() error {
			block, ok, err := h.provider.Block(gctx, ethtypes.ByNumber(number))
			if err != nil {
				return WrapInternal(err)
			}
			if !ok {
				return nil
			}
			results[i] = bodyFromBlock(block)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetPayloadBodiesByHash returns one payload body per requested hash, in
// input order.
func (h *HistoryService) GetPayloadBodiesByHash(ctx context.Context, hashes []ethtypes.Hash) ([]*PayloadBody, error) {
	if uint64(len(hashes)) > MaxPayloadBodiesLimit {
		return nil, &PayloadRequestTooLargeError{Len: uint64(len(hashes))}
	}

	results := make([]*PayloadBody, len(hashes))
	g, gctx := errgroup.WithContext(ctx)
	for i, hash := range hashes {
		i, hash := i, hash
		g.Go(func() error {
			block, ok, err := h.provider.Block(gctx, ethtypes.ByHash(hash))
			if err != nil {
				return WrapInternal(err)
			}
			if !ok {
				return nil
			}
			results[i] = bodyFromBlock(block)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func bodyFromBlock(block *ethtypes.Block) *PayloadBody {
	return &PayloadBody{
		Transactions: block.Body.Transactions,
		Ommers:       block.Body.Ommers,
		Withdrawals:  block.Body.Withdrawals,
	}
}
