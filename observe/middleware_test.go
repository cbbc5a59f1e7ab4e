package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestMiddleware_Wrap(t *testing.T) {
	tracer, recorder := newRecordingTracer()
	reader := sdkmetric.NewManualReader()
	metrics, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	mw := NewMiddleware(tracer, metrics, logger)
	probeErr := errors.New("timeout")

	wrapped := mw.Wrap(func(ctx context.Context, probe ProbeMeta) error {
		if probe.Name == "queue" {
			return probeErr
		}
		return nil
	})

	if err := wrapped(context.Background(), ProbeMeta{Name: "database"}); err != nil {
		t.Errorf("wrapped(database) error = %v", err)
	}
	if err := wrapped(context.Background(), ProbeMeta{Name: "queue"}); err != probeErr {
		t.Errorf("wrapped(queue) error = %v, want %v", err, probeErr)
	}

	if got := len(recorder.Ended()); got != 2 {
		t.Errorf("ended spans = %d, want 2", got)
	}

	rm := collect(t, reader)
	if got := sumValue(t, rm, "health.probe.checks"); got != 2 {
		t.Errorf("health.probe.checks = %d, want 2", got)
	}
	if got := sumValue(t, rm, "health.probe.failures"); got != 1 {
		t.Errorf("health.probe.failures = %d, want 1", got)
	}

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	if entries[1]["level"] != "warn" || entries[1]["error"] != "timeout" {
		t.Errorf("failure entry = %v, want warn with error=timeout", entries[1])
	}
}

func TestNoopMiddleware(t *testing.T) {
	called := false
	wrapped := NoopMiddleware().Wrap(func(ctx context.Context, probe ProbeMeta) error {
		called = true
		return nil
	})

	if err := wrapped(context.Background(), ProbeMeta{Name: "x"}); err != nil {
		t.Errorf("wrapped() error = %v", err)
	}
	if !called {
		t.Error("wrapped function was not called")
	}
}
