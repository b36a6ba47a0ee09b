package engineapi

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fenrir-eth/fenrir/internal/chainspec"
	"github.com/fenrir-eth/fenrir/internal/ethtypes"
	"github.com/fenrir-eth/fenrir/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// API is the API Facade: one public entry point per Engine API method. It
// emits a uniform trace span and metric sample per call, tagged with the
// method name, then delegates to the relevant component.
type API struct {
	gateway    *Gateway
	store      *PayloadStoreFacade
	history    *HistoryService
	reconciler *Reconciler

	tracer  trace.Tracer
	metrics *metrics.EngineMetrics
}

// New constructs the API Facade, wiring together the Beacon Message
// Gateway, Payload Store Facade, History Service, and Transition
// Configuration Reconciler over the given collaborators. m may be nil, in
// which case no metrics are recorded.
func New(spec *chainspec.ChainConfig, channel BeaconMessageChannel, payloadStore PayloadStore, blocks BlockProvider, m *metrics.EngineMetrics) *API {
	return &API{
		gateway:    NewGateway(spec, channel),
		store:      NewPayloadStoreFacade(payloadStore),
		history:    NewHistoryService(blocks),
		reconciler: NewReconciler(spec, blocks),
		tracer:     otel.Tracer("github.com/fenrir-eth/fenrir/engineapi"),
		metrics:    m,
	}
}

// NewPayloadV1 handles engine_newPayloadV1.
func (a *API) NewPayloadV1(ctx context.Context, payload *ExecutionPayload) (PayloadStatus, error) {
	return traced(ctx, a, "engine_newPayloadV1", func(ctx context.Context) (PayloadStatus, error) {
		return a.gateway.NewPayload(ctx, V1, payload)
	})
}

// NewPayloadV2 handles engine_newPayloadV2.
func (a *API) NewPayloadV2(ctx context.Context, payload *ExecutionPayload) (PayloadStatus, error) {
	return traced(ctx, a, "engine_newPayloadV2", func(ctx context.Context) (PayloadStatus, error) {
		return a.gateway.NewPayload(ctx, V2, payload)
	})
}

// ForkchoiceUpdatedV1 handles engine_forkchoiceUpdatedV1.
func (a *API) ForkchoiceUpdatedV1(ctx context.Context, state ForkchoiceState, attrs *PayloadAttributes) (ForkchoiceUpdated, error) {
	return traced(ctx, a, "engine_forkchoiceUpdatedV1", func(ctx context.Context) (ForkchoiceUpdated, error) {
		return a.gateway.ForkchoiceUpdated(ctx, V1, state, attrs)
	})
}

// ForkchoiceUpdatedV2 handles engine_forkchoiceUpdatedV2.
func (a *API) ForkchoiceUpdatedV2(ctx context.Context, state ForkchoiceState, attrs *PayloadAttributes) (ForkchoiceUpdated, error) {
	return traced(ctx, a, "engine_forkchoiceUpdatedV2", func(ctx context.Context) (ForkchoiceUpdated, error) {
		return a.gateway.ForkchoiceUpdated(ctx, V2, state, attrs)
	})
}

// GetPayloadV1 handles engine_getPayloadV1.
func (a *API) GetPayloadV1(ctx context.Context, id PayloadID) (*ExecutionPayload, error) {
	return traced(ctx, a, "engine_getPayloadV1", func(ctx context.Context) (*ExecutionPayload, error) {
		return a.store.GetPayloadV1(ctx, id)
	})
}

// GetPayloadV2 handles engine_getPayloadV2.
func (a *API) GetPayloadV2(ctx context.Context, id PayloadID) (*ExecutionPayloadEnvelope, error) {
	return traced(ctx, a, "engine_getPayloadV2", func(ctx context.Context) (*ExecutionPayloadEnvelope, error) {
		return a.store.GetPayloadV2(ctx, id)
	})
}

// GetPayloadBodiesByHashV1 handles engine_getPayloadBodiesByHashV1.
func (a *API) GetPayloadBodiesByHashV1(ctx context.Context, hashes []ethtypes.Hash) ([]*PayloadBody, error) {
	result, err := traced(ctx, a, "engine_getPayloadBodiesByHashV1", func(ctx context.Context) ([]*PayloadBody, error) {
		return a.history.GetPayloadBodiesByHash(ctx, hashes)
	})
	if a.metrics != nil {
		a.metrics.PayloadBodySize.Observe(float64(len(hashes)))
	}
	return result, err
}

// GetPayloadBodiesByRangeV1 handles engine_getPayloadBodiesByRangeV1.
func (a *API) GetPayloadBodiesByRangeV1(ctx context.Context, start, count uint64) ([]*PayloadBody, error) {
	result, err := traced(ctx, a, "engine_getPayloadBodiesByRangeV1", func(ctx context.Context) ([]*PayloadBody, error) {
		return a.history.GetPayloadBodiesByRange(ctx, start, count)
	})
	if a.metrics != nil {
		a.metrics.PayloadBodySize.Observe(float64(count))
	}
	return result, err
}

// ExchangeTransitionConfigurationV1 handles
// engine_exchangeTransitionConfigurationV1.
func (a *API) ExchangeTransitionConfigurationV1(ctx context.Context, config TransitionConfiguration) (TransitionConfiguration, error) {
	return traced(ctx, a, "engine_exchangeTransitionConfigurationV1", func(ctx context.Context) (TransitionConfiguration, error) {
		return a.reconciler.ExchangeTransitionConfiguration(ctx, config)
	})
}

// ExchangeCapabilities handles engine_exchangeCapabilitiesV1. It ignores
// the CL's advertised method list -- which is purely informational -- and
// returns this EL's supported methods.
func (a *API) ExchangeCapabilities(ctx context.Context, _ []string) ([]string, error) {
	return traced(ctx, a, "engine_exchangeCapabilitiesV1", func(ctx context.Context) ([]string, error) {
		return Capabilities, nil
	})
}

// traced wraps a component call with a trace span and, when metrics are
// configured, a request counter, duration histogram, and (on failure) an
// error counter tagged with a coarse error kind.
func traced[T any](ctx context.Context, a *API, method string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := a.tracer.Start(ctx, method)
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	if a.metrics != nil {
		a.metrics.RequestsTotal.WithLabelValues(method).Inc()
		a.metrics.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
		if err != nil {
			a.metrics.RequestErrors.WithLabelValues(method, errorKind(err)).Inc()
			if errors.Is(err, ErrEngineUnavailable) {
				a.metrics.GatewayDrops.Inc()
			}
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("engine.error_kind", errorKind(err)))
	}
	return result, err
}

// errorKind categorizes an error into a coarse label suitable for a
// metric's cardinality budget.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrWithdrawalsNotSupportedInV1),
		errors.Is(err, ErrNoWithdrawalsPostShanghai),
		errors.Is(err, ErrHasWithdrawalsPreShanghai):
		return "schema"
	case errors.Is(err, ErrEngineUnavailable):
		return "engine_unavailable"
	case IsUnknownPayload(err):
		return "unknown_payload"
	default:
		var tooLarge *PayloadRequestTooLargeError
		var invalidRange *InvalidBodiesRangeError
		var ttdMismatch *TerminalTDError
		var blockHashMismatch *TerminalBlockHashError
		switch {
		case errors.As(err, &tooLarge):
			return "too_large"
		case errors.As(err, &invalidRange):
			return "invalid_range"
		case errors.As(err, &ttdMismatch):
			return "terminal_td_mismatch"
		case errors.As(err, &blockHashMismatch):
			return "terminal_block_hash_mismatch"
		default:
			return "internal"
		}
	}
}
