package observe

import (
	"context"
	"time"
)

// CheckFunc runs one probe check. It returns nil when the dependency is
// healthy and an error describing the failure otherwise.
type CheckFunc func(ctx context.Context, probe ProbeMeta) error

// Middleware wraps probe checks with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CheckFunc.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NoopTracer()
	}
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NoopMiddleware returns a middleware that only calls through.
func NoopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Wrap wraps a CheckFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn CheckFunc) CheckFunc {
	return func(ctx context.Context, probe ProbeMeta) error {
		ctx, span := m.tracer.StartSpan(ctx, probe)
		start := time.Now()

		err := fn(ctx, probe)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordCheck(ctx, probe, duration, err)

		probeLogger := m.logger.WithProbe(probe)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			probeLogger.Warn(ctx, "probe unhealthy", fields...)
		} else {
			probeLogger.Debug(ctx, "probe healthy", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
