package memstore

import (
	"context"
	"sync"

	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/holiman/uint256"
)

// Artifact is an in-progress or completed build job. It implements
// engineapi.BuildArtifact.
type Artifact struct {
	Payload *engineapi.ExecutionPayload
	Value   *uint256.Int
}

// IntoV1Payload strips withdrawals and envelope metadata, projecting the
// artifact to its pre-Shanghai shape.
func (a *Artifact) IntoV1Payload() *engineapi.ExecutionPayload {
	v1 := *a.Payload
	v1.Withdrawals = nil
	return &v1
}

// IntoV2Envelope returns the full V2 envelope: payload plus declared value.
func (a *Artifact) IntoV2Envelope() *engineapi.ExecutionPayloadEnvelope {
	return &engineapi.ExecutionPayloadEnvelope{
		ExecutionPayload: a.Payload,
		BlockValue:       a.Value,
	}
}

// PayloadStore is a bounded, in-memory store of in-flight build jobs. Once
// more than capacity jobs have been inserted, the oldest is evicted --
// mirroring how a real payload builder bounds its working set rather than
// retaining every job it has ever started. It implements
// engineapi.PayloadStore.
type PayloadStore struct {
	mu       sync.Mutex
	capacity int
	order    []engineapi.PayloadID
	jobs     map[engineapi.PayloadID]engineapi.BuildArtifact
}

// NewPayloadStore returns an empty PayloadStore bounded to capacity
// in-flight jobs.
func NewPayloadStore(capacity int) *PayloadStore {
	return &PayloadStore{
		capacity: capacity,
		jobs:     make(map[engineapi.PayloadID]engineapi.BuildArtifact),
	}
}

// Put records a build job under id, evicting the oldest job if the store
// is at capacity.
func (s *PayloadStore) Put(id engineapi.PayloadID, artifact engineapi.BuildArtifact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; !exists {
		s.order = append(s.order, id)
	}
	s.jobs[id] = artifact

	for s.capacity > 0 && len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.jobs, oldest)
	}
}

// Get implements engineapi.PayloadStore.
func (s *PayloadStore) Get(ctx context.Context, id engineapi.PayloadID) (engineapi.BuildArtifact, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.jobs[id]
	return a, ok, nil
}

var _ engineapi.PayloadStore = (*PayloadStore)(nil)
