package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RefreshMeta describes one snapshot refresh attempt.
type RefreshMeta struct {
	Trigger string // "monitor", "read", "detailed"
	Overall string // aggregate status; empty when skipped
	Skipped bool   // another refresh was already in flight

	// Cancelled marks a cycle whose context ended before it completed;
	// its snapshot was not stored.
	Cancelled bool
}

// Metrics records probe and refresh metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one probe check; err is nil when the probe was healthy.
	RecordCheck(ctx context.Context, meta ProbeMeta, duration time.Duration, err error)

	// RecordRefresh records one refresh cycle, including skipped ones.
	RecordRefresh(ctx context.Context, meta RefreshMeta, duration time.Duration)
}

type metricsImpl struct {
	checks      metric.Int64Counter
	failures    metric.Int64Counter
	checkHist   metric.Float64Histogram
	refreshes   metric.Int64Counter
	skipped     metric.Int64Counter
	refreshHist metric.Float64Histogram
}

// NewMetrics creates probe and refresh instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	checks, err := meter.Int64Counter(
		"health.probe.checks",
		metric.WithDescription("Total number of probe checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"health.probe.failures",
		metric.WithDescription("Total number of unhealthy probe results"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkHist, err := meter.Float64Histogram(
		"health.probe.duration_ms",
		metric.WithDescription("Probe check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	refreshes, err := meter.Int64Counter(
		"health.refresh.total",
		metric.WithDescription("Total number of completed snapshot refreshes"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter(
		"health.refresh.skipped",
		metric.WithDescription("Refreshes skipped because another was in flight"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	refreshHist, err := meter.Float64Histogram(
		"health.refresh.duration_ms",
		metric.WithDescription("Snapshot refresh duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		checks:      checks,
		failures:    failures,
		checkHist:   checkHist,
		refreshes:   refreshes,
		skipped:     skipped,
		refreshHist: refreshHist,
	}, nil
}

// MetricsFromObserver creates Metrics on the observer's meter.
func MetricsFromObserver(obs Observer) (Metrics, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMetrics(obs.Meter())
}

func (m *metricsImpl) RecordCheck(ctx context.Context, meta ProbeMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.checks.Add(ctx, 1, opt)
	if err != nil {
		m.failures.Add(ctx, 1, opt)
	}
	m.checkHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordRefresh(ctx context.Context, meta RefreshMeta, duration time.Duration) {
	trigger := attribute.String("refresh.trigger", meta.Trigger)

	if meta.Skipped {
		m.skipped.Add(ctx, 1, metric.WithAttributes(trigger))
		return
	}

	status := meta.Overall
	if meta.Cancelled {
		status = "cancelled"
	}
	opt := metric.WithAttributes(trigger, attribute.String("health.status", status))
	m.refreshes.Add(ctx, 1, opt)
	m.refreshHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

type noopMetrics struct{}

// NoopMetrics returns a Metrics that records nothing.
func NoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordCheck(ctx context.Context, meta ProbeMeta, duration time.Duration, err error) {
}

func (noopMetrics) RecordRefresh(ctx context.Context, meta RefreshMeta, duration time.Duration) {}
