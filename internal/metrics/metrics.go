// Package metrics exposes Engine API operational counters and histograms
// in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls metric namespacing and the HTTP exposition path.
type Config struct {
	// Namespace is an optional prefix prepended to all metric names
	// (e.g. "fenrir" produces "fenrir_engine_requests_total").
	Namespace string
	// Path is the HTTP path to serve metrics on (default "/metrics").
	Path string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{Namespace: "fenrir", Path: "/metrics"}
}

// EngineMetrics holds the Prometheus collectors for the Engine API surface.
type EngineMetrics struct {
	registry *prometheus.Registry
	path     string

	RequestsTotal   *prometheus.CounterVec
	RequestErrors   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	PayloadBodySize prometheus.Histogram
	GatewayDrops    prometheus.Counter
}

// New creates an EngineMetrics instance registered against a fresh
// registry, along with the HTTP handler that serves it.
func New(cfg Config) *EngineMetrics {
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
	reg := prometheus.NewRegistry()

	m := &EngineMetrics{
		registry: reg,
		path:     cfg.Path,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "engine_requests_total",
			Help:      "Total Engine API method invocations, by method name.",
		}, []string{"method"}),
		RequestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "engine_request_errors_total",
			Help:      "Total Engine API method invocations that returned an error, by method and error kind.",
		}, []string{"method", "kind"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Engine API method latency, by method name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		PayloadBodySize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "engine_payload_bodies_requested",
			Help:      "Number of payload bodies requested per getPayloadBodies call.",
			Buckets:   []float64{1, 8, 32, 128, 512, 1024},
		}),
		GatewayDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "engine_gateway_drops_total",
			Help:      "Total beacon message gateway requests that failed because the consensus engine was unavailable (send failed or reply dropped).",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestErrors,
		m.RequestDuration,
		m.PayloadBodySize,
		m.GatewayDrops,
	)
	return m
}

// Handler returns the http.Handler that serves the registry's metrics. It
// does not route by Path: it answers on whatever path it is mounted at.
func (m *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Path returns the HTTP path metrics are served on.
func (m *EngineMetrics) Path() string { return m.path }
