package health

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"
)

// Status represents the health status of a dependency or of the whole service.
type Status int

const (
	// StatusHealthy indicates the dependency answered normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates at least one dependency is unhealthy. It is only
	// ever reported as the overall status of a Snapshot.
	StatusDegraded
	// StatusUnhealthy indicates the dependency failed, timed out or is missing.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result is the outcome of checking one dependency once.
type Result struct {
	// Status is StatusHealthy or StatusUnhealthy.
	Status Status

	// Detail is a short human description, e.g. "connected" or an error message.
	Detail string

	// ResponseTime is how long the check took.
	ResponseTime time.Duration

	// CheckedAt is when the check started.
	CheckedAt time.Time

	// Metrics holds optional dependency-specific figures such as pool sizes.
	Metrics map[string]float64

	// Error is the underlying failure, if any.
	Error error
}

// Healthy creates a healthy result.
func Healthy(detail string) Result {
	return Result{
		Status:    StatusHealthy,
		Detail:    detail,
		CheckedAt: time.Now(),
	}
}

// Unhealthy creates an unhealthy result. An empty detail is filled from err.
func Unhealthy(detail string, err error) Result {
	if detail == "" && err != nil {
		detail = err.Error()
	}
	return Result{
		Status:    StatusUnhealthy,
		Detail:    detail,
		Error:     err,
		CheckedAt: time.Now(),
	}
}

// WithMetrics returns a copy of r carrying the given metrics.
func (r Result) WithMetrics(m map[string]float64) Result {
	r.Metrics = maps.Clone(m)
	return r
}

// WithResponseTime sets the response time on a result.
func (r Result) WithResponseTime(d time.Duration) Result {
	r.ResponseTime = d
	return r
}

// ResponseTimeMs returns the response time in whole milliseconds.
func (r Result) ResponseTimeMs() int64 {
	if r.ResponseTime < 0 {
		return 0
	}
	return r.ResponseTime.Milliseconds()
}

// err returns the failure as an error for telemetry, or nil when healthy.
func (r Result) err() error {
	if r.Status == StatusHealthy {
		return nil
	}
	if r.Error != nil {
		return r.Error
	}
	if r.Detail != "" {
		return errors.New(r.Detail)
	}
	return errors.New(r.Status.String())
}

// Probe checks one external dependency.
//
// Contract:
//   - Check must capture every dependency failure in the returned Result and
//     must not panic; the runner nevertheless recovers panics.
//   - The deadline travels in ctx. Probes should honour it, but a probe that
//     ignores it is abandoned once its budget elapses.
//   - Probes are read-only and safe to call concurrently.
type Probe interface {
	Check(ctx context.Context) Result
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc func(ctx context.Context) Result

// Check calls f(ctx).
func (f ProbeFunc) Check(ctx context.Context) Result {
	return f(ctx)
}

// NotConfigured returns a probe that always reports the named dependency as
// unhealthy because no client was configured for it.
func NotConfigured(name string) Probe {
	err := fmt.Errorf("%w: %s", ErrNotConfigured, name)
	return ProbeFunc(func(context.Context) Result {
		return Unhealthy("not configured", err)
	})
}
