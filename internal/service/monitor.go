package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"zhamesh/internal/domain"
	"zhamesh/internal/metrics"
	"zhamesh/internal/topology"
)

// Sink receives every successful pass in order
type Sink interface {
	WritePass(ctx context.Context, pass *domain.Pass) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, pass *domain.Pass) error

// WritePass calls f
func (f SinkFunc) WritePass(ctx context.Context, pass *domain.Pass) error {
	return f(ctx, pass)
}

type namedSink struct {
	name string
	sink Sink
}

// Monitor runs reconciliation passes and fans the results out. Passes are
// serialized; View may be called from any goroutine.
type Monitor struct {
	mu         sync.Mutex
	reconciler *topology.Reconciler
	sinks      []namedSink
	events     *EventBus
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	view atomic.Pointer[domain.TopologyView]
}

// NewMonitor creates a monitor around rec
func NewMonitor(rec *topology.Reconciler, events *EventBus, m *metrics.Metrics, logger zerolog.Logger) *Monitor {
	mon := &Monitor{
		reconciler: rec,
		events:     events,
		metrics:    m,
		logger:     logger,
	}
	mon.view.Store(&domain.TopologyView{Devices: []domain.Device{}, Edges: []domain.Edge{}})
	return mon
}

// AddSink registers a sink. Sinks run in registration order.
func (m *Monitor) AddSink(name string, s Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, namedSink{name: name, sink: s})
}

// View returns the topology as of the last successful pass
func (m *Monitor) View() *domain.TopologyView {
	return m.view.Load()
}

// HandleSnapshot reconciles snap, publishes the resulting view and hands
// the pass to every sink. Sink failures are logged and counted but do not
// fail the pass. A failed upstream query is returned so the caller can
// back off.
func (m *Monitor) HandleSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pass, err := m.reconciler.Reconcile(snap)
	if err != nil {
		m.metrics.Passes.WithLabelValues(metrics.OutcomeFailed).Inc()

		failure := QueryFailure{RequestID: snap.RequestID}
		var qf *topology.QueryFailedError
		if errors.As(err, &qf) {
			failure.Code = qf.Code
			failure.Message = qf.Message
		}
		m.publish(EventQueryFailed, failure)
		return err
	}

	for _, skipped := range pass.Skipped {
		m.logger.Warn().Err(skipped).Int("sequence", pass.Sequence).Msg("Skipping device")
	}

	view := m.reconciler.View(pass.Sequence, pass.CapturedAt)
	m.view.Store(view)
	m.record(pass, view)

	if len(pass.Removed) > 0 {
		m.logger.Info().Strs("addresses", pass.Removed).Msg("Removed absent devices")
		m.publish(EventDevicesRemoved, pass.Removed)
	}

	if pass.Setup {
		m.logger.Info().
			Int("devices", len(view.Devices)).
			Int("edges", len(view.Edges)).
			Msg("Setup pass complete")
	} else {
		m.logger.Debug().
			Int("sequence", pass.Sequence).
			Int("observations", len(pass.Observations)).
			Int("offline", len(pass.Offline)).
			Msg("Pass complete")
	}

	for _, ns := range m.sinks {
		if err := ns.sink.WritePass(ctx, pass); err != nil {
			m.metrics.SinkErrors.WithLabelValues(ns.name).Inc()
			m.logger.Error().Err(err).Str("sink", ns.name).Int("sequence", pass.Sequence).Msg("Sink write failed")
		}
	}

	m.publish(EventPassCompleted, PassSummary{
		Sequence:     pass.Sequence,
		CapturedAt:   pass.CapturedAt,
		Setup:        pass.Setup,
		Observations: len(pass.Observations),
		Offline:      len(pass.Offline),
		Skipped:      len(pass.Skipped),
		Devices:      len(view.Devices),
		Edges:        len(view.Edges),
	})
	for _, flag := range pass.Offline {
		m.publish(EventDeviceOffline, flag)
	}

	return nil
}

func (m *Monitor) record(pass *domain.Pass, view *domain.TopologyView) {
	outcome := metrics.OutcomeSteady
	if pass.Setup {
		outcome = metrics.OutcomeSetup
	}
	m.metrics.Passes.WithLabelValues(outcome).Inc()
	m.metrics.Observations.Add(float64(len(pass.Observations)))
	m.metrics.OfflineFlags.Add(float64(len(pass.Offline)))
	m.metrics.SkippedDevices.Add(float64(len(pass.Skipped)))
	m.metrics.RemovedDevices.Add(float64(len(pass.Removed)))
	m.metrics.RegistryDevices.Set(float64(len(view.Devices)))
	m.metrics.Edges.Set(float64(len(view.Edges)))
}

func (m *Monitor) publish(t EventType, payload interface{}) {
	if m.events != nil {
		m.events.Publish(Event{Type: t, Payload: payload})
	}
}
