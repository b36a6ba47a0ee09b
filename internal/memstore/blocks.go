// Package memstore provides in-memory implementations of the Engine API's
// block provider and payload store collaborators, suitable for a
// single-process deployment or for tests of the wiring above the
// engineapi package itself. A production node backs these same
// interfaces with its real block database and payload builder.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
)

// BlockStore is a thread-safe in-memory block store indexed by both
// number and hash. It implements engineapi.BlockProvider.
type BlockStore struct {
	mu       sync.RWMutex
	byNumber map[uint64]*ethtypes.Block
	byHash   map[ethtypes.Hash]*ethtypes.Block
}

// NewBlockStore returns an empty BlockStore.
func NewBlockStore() *BlockStore {
	return &BlockStore{
		byNumber: make(map[uint64]*ethtypes.Block),
		byHash:   make(map[ethtypes.Hash]*ethtypes.Block),
	}
}

// Insert adds or replaces a block, indexed by both its number and hash.
// Every withdrawal in the block's body is checked with
// ethtypes.ValidateWithdrawal before the block is admitted; a malformed
// withdrawal rejects the whole block rather than being silently stored.
func (s *BlockStore) Insert(block *ethtypes.Block) error {
	if block.Body != nil {
		for i, w := range block.Body.Withdrawals {
			if err := ethtypes.ValidateWithdrawal(w); err != nil {
				return fmt.Errorf("block %d withdrawal %d: %w", block.Header.Number, i, err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byNumber[block.Header.Number] = block
	s.byHash[block.Header.Hash] = block
	return nil
}

// Block implements engineapi.BlockProvider.
func (s *BlockStore) Block(ctx context.Context, id ethtypes.BlockID) (*ethtypes.Block, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id.Number != nil {
		b, ok := s.byNumber[*id.Number]
		return b, ok, nil
	}
	if id.Hash != nil {
		b, ok := s.byHash[*id.Hash]
		return b, ok, nil
	}
	return nil, false, nil
}

// BlockHashAt implements engineapi.BlockProvider.
func (s *BlockStore) BlockHashAt(ctx context.Context, number uint64) (ethtypes.Hash, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byNumber[number]
	if !ok {
		return ethtypes.Hash{}, false, nil
	}
	return b.Header.Hash, true, nil
}

var _ engineapi.BlockProvider = (*BlockStore)(nil)
