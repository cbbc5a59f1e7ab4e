package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ProbeMeta describes one dependency probe for telemetry purposes.
type ProbeMeta struct {
	Name     string        // unique probe name, e.g. "database"
	Kind     string        // dependency kind, e.g. "sql", "redis" (optional)
	Critical bool          // informational criticality flag
	Timeout  time.Duration // per-probe budget (optional)
}

// SpanName returns the deterministic span name for this probe.
// Format: health.probe.<name>
func (m ProbeMeta) SpanName() string {
	return "health.probe." + m.Name
}

func (m ProbeMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("probe.name", m.Name),
		attribute.Bool("probe.critical", m.Critical),
	}
	if m.Kind != "" {
		attrs = append(attrs, attribute.String("probe.kind", m.Kind))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with probe-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for one probe check.
	StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	attrs := meta.attributes()
	attrs = append(attrs, attribute.Bool("probe.unhealthy", false))
	if meta.Timeout > 0 {
		attrs = append(attrs, attribute.Int64("probe.timeout_ms", meta.Timeout.Milliseconds()))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("probe.unhealthy", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NoopTracer returns a tracer that records nothing.
func NoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
