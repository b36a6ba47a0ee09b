package engineapi

import "context"

// BuildArtifact is an in-progress (or completed) payload build job as held
// by the payload store. The store itself decides the policy for what
// happens to a job once it has been served -- the facade only projects.
type BuildArtifact interface {
	// IntoV1Payload projects the artifact to the pre-Shanghai payload
	// shape: withdrawals and envelope metadata are stripped.
	IntoV1Payload() *ExecutionPayload
	// IntoV2Envelope projects the artifact to the full V2 envelope.
	IntoV2Envelope() *ExecutionPayloadEnvelope
}

// PayloadStore looks up in-progress build jobs by PayloadID. Get returns
// ok=false when no job exists under that id; it never returns a nil
// artifact with ok=true.
type PayloadStore interface {
	Get(ctx context.Context, id PayloadID) (artifact BuildArtifact, ok bool, err error)
}

// PayloadStoreFacade is the Payload Store Facade: it looks up in-progress
// build jobs by PayloadID and returns either the V1 or V2 envelope shape.
type PayloadStoreFacade struct {
	store PayloadStore
}

// NewPayloadStoreFacade constructs a facade over the given payload store
// collaborator.
func NewPayloadStoreFacade(store PayloadStore) *PayloadStoreFacade {
	return &PayloadStoreFacade{store: store}
}

// GetPayloadV1 returns the pre-Shanghai projection of the build job
// identified by id, or UnknownPayloadError if none exists.
func (f *PayloadStoreFacade) GetPayloadV1(ctx context.Context, id PayloadID) (*ExecutionPayload, error) {
	artifact, ok, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, WrapInternal(err)
	}
	if !ok {
		return nil, &UnknownPayloadError{ID: id}
	}
	return artifact.IntoV1Payload(), nil
}

// GetPayloadV2 returns the full envelope projection of the build job
// identified by id, or UnknownPayloadError if none exists.
func (f *PayloadStoreFacade) GetPayloadV2(ctx context.Context, id PayloadID) (*ExecutionPayloadEnvelope, error) {
	artifact, ok, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, WrapInternal(err)
	}
	if !ok {
		return nil, &UnknownPayloadError{ID: id}
	}
	return artifact.IntoV2Envelope(), nil
}
