// Package metrics holds the Prometheus collectors for the monitor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zhamesh"

// Pass outcomes
const (
	OutcomeSetup  = "setup"
	OutcomeSteady = "steady"
	OutcomeFailed = "failed"
)

// Metrics groups every collector. Each instance owns its registry so tests
// can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// Passes counts reconciliation passes. Labels: outcome (setup, steady, failed)
	Passes *prometheus.CounterVec
	// Observations counts emitted neighbor observations
	Observations prometheus.Counter
	// OfflineFlags counts emitted offline flags
	OfflineFlags prometheus.Counter
	// SkippedDevices counts devices dropped for malformed timestamps
	SkippedDevices prometheus.Counter
	// RemovedDevices counts devices evicted by the sweep policy
	RemovedDevices prometheus.Counter
	// RegistryDevices is the current registry size
	RegistryDevices prometheus.Gauge
	// Edges is the current edge table size
	Edges prometheus.Gauge
	// Reconnects counts websocket reconnect attempts
	Reconnects prometheus.Counter
	// SinkErrors counts failed sink writes. Labels: sink
	SinkErrors *prometheus.CounterVec
	// QueryDuration measures the zha/devices round trip
	QueryDuration prometheus.Histogram
}

// New creates the collectors on a fresh registry that also carries the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Passes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Reconciliation passes by outcome",
		}, []string{"outcome"}),
		Observations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_total",
			Help:      "Neighbor observations emitted",
		}),
		OfflineFlags: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offline_flags_total",
			Help:      "Offline flags emitted",
		}),
		SkippedDevices: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_devices_total",
			Help:      "Devices skipped because their last-seen could not be parsed",
		}),
		RemovedDevices: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removed_devices_total",
			Help:      "Devices evicted because they were absent from a snapshot",
		}),
		RegistryDevices: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "devices",
			Help:      "Devices currently held in the registry",
		}),
		Edges: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "edges",
			Help:      "Directed edges currently held in the edge table",
		}),
		Reconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "reconnects_total",
			Help:      "Websocket reconnect attempts",
		}),
		SinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed sink writes by sink",
		}, []string{"sink"}),
		QueryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "query_duration_seconds",
			Help:      "zha/devices query round trip in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
