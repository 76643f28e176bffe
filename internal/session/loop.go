package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"zhamesh/internal/codec"
	"zhamesh/internal/domain"
	"zhamesh/internal/metrics"
)

// Querier is the connection the loop drives. *Client implements it.
type Querier interface {
	Connect(ctx context.Context) error
	QueryDevices(ctx context.Context) ([]byte, time.Time, error)
	Close() error
}

// Handler consumes decoded snapshots. A returned error makes the loop back
// off before the next query without reconnecting.
type Handler interface {
	HandleSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, snap *domain.Snapshot) error

// HandleSnapshot calls f
func (f HandlerFunc) HandleSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	return f(ctx, snap)
}

// LoopConfig holds loop timing and the optional raw reply archive
type LoopConfig struct {
	Interval   time.Duration
	RetryDelay time.Duration
	Archive    *codec.Archive
}

// Loop polls the hub until its context is cancelled
type Loop struct {
	client   Querier
	handler  Handler
	interval time.Duration
	retry    time.Duration
	archive  *codec.Archive
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// transportError marks failures that require a reconnect
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// NewLoop creates a loop. Connect attempts are limited to one per
// RetryDelay.
func NewLoop(client Querier, handler Handler, cfg LoopConfig, m *metrics.Metrics, logger zerolog.Logger) *Loop {
	retry := cfg.RetryDelay
	if retry <= 0 {
		retry = cfg.Interval
	}
	return &Loop{
		client:   client,
		handler:  handler,
		interval: cfg.Interval,
		retry:    retry,
		archive:  cfg.Archive,
		limiter:  rate.NewLimiter(rate.Every(retry), 1),
		metrics:  m,
		logger:   logger,
	}
}

// Run connects, polls and reconnects until ctx is done. It returns nil on
// cancellation.
func (l *Loop) Run(ctx context.Context) error {
	defer l.client.Close()

	for attempt := 0; ; attempt++ {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil
		}
		if attempt > 0 {
			l.metrics.Reconnects.Inc()
		}

		if err := l.client.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			ev := l.logger.Warn()
			if errors.Is(err, ErrAuthFailed) {
				ev = l.logger.Error()
			}
			ev.Err(err).Dur("retry", l.retry).Msg("Connect failed")
			continue
		}

		err := l.poll(ctx)
		l.client.Close()
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn().Err(err).Msg("Connection lost, reconnecting")
	}
}

// poll queries until a transport error or cancellation
func (l *Loop) poll(ctx context.Context) error {
	for {
		err := l.pollOnce(ctx)

		var te *transportError
		switch {
		case err == nil:
			if err := sleep(ctx, l.interval); err != nil {
				return err
			}
		case errors.As(err, &te):
			return err
		default:
			l.logger.Warn().Err(err).Dur("retry", l.retry).Msg("Pass failed, backing off")
			if err := sleep(ctx, l.retry); err != nil {
				return err
			}
		}
	}
}

func (l *Loop) pollOnce(ctx context.Context) error {
	start := time.Now()
	raw, capturedAt, err := l.client.QueryDevices(ctx)
	if err != nil {
		return &transportError{err: err}
	}
	l.metrics.QueryDuration.Observe(time.Since(start).Seconds())

	if l.archive != nil {
		if err := l.archive.Append(raw); err != nil {
			l.logger.Error().Err(err).Msg("Failed to archive reply")
			l.metrics.SinkErrors.WithLabelValues("archive").Inc()
		}
	}

	snap, err := codec.DecodeDevices(raw, capturedAt)
	if err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}

	l.logger.Debug().Int("id", snap.RequestID).Int("devices", len(snap.Devices)).Msg("Received device list")

	return l.handler.HandleSnapshot(ctx, snap)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
