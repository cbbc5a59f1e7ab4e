package health

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"strings"
	"time"

	"github.com/Ishswami-Tech/healthops/resilience"
)

// UpgradedDetail is the detail of a result upgraded by a successful fallback.
const UpgradedDetail = "reachable, application connection pending"

// Verifier performs a low-level reachability check of a dependency, below the
// application client that may be refusing calls.
type Verifier interface {
	Verify(ctx context.Context) error
}

// VerifierFunc is an adapter to allow ordinary functions to be used as Verifiers.
type VerifierFunc func(ctx context.Context) error

// Verify calls f(ctx).
func (f VerifierFunc) Verify(ctx context.Context) error {
	return f(ctx)
}

// TCPVerifier verifies reachability with a raw TCP connect.
type TCPVerifier struct {
	// Address is the dependency host:port.
	Address string
}

// Verify dials Address and closes the connection immediately.
func (v TCPVerifier) Verify(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", v.Address)
	if err != nil {
		return resilience.AsConnectionError(v.Address, err)
	}
	return conn.Close()
}

// BreakerOpenPatterns are matched case-insensitively against the detail and
// error text of results whose error carries no typed breaker verdict.
var BreakerOpenPatterns = []string{
	"circuit breaker is open",
	"circuit breaker open",
	"circuit is open",
	"circuit open",
	"breaker is open",
	"breaker open",
}

// IsBreakerOpen reports whether an unhealthy result was caused by a
// client-side circuit breaker rather than the dependency itself.
//
// Typed errors win: resilience.ErrCircuitOpen means open and
// resilience.ErrConnectionFailed or a timeout means a genuine failure. Only
// untyped failures are matched against BreakerOpenPatterns.
func IsBreakerOpen(r Result) bool {
	if r.Status == StatusHealthy {
		return false
	}

	switch {
	case errors.Is(r.Error, resilience.ErrCircuitOpen):
		return true
	case errors.Is(r.Error, resilience.ErrConnectionFailed),
		errors.Is(r.Error, ErrProbeTimeout),
		errors.Is(r.Error, ErrProbeCancelled),
		errors.Is(r.Error, ErrProbePanic):
		return false
	}

	text := strings.ToLower(r.Detail)
	if r.Error != nil {
		text += " " + strings.ToLower(r.Error.Error())
	}
	for _, pattern := range BreakerOpenPatterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

// escalate consults def.Fallback for a breaker-open result. A successful
// verification upgrades the result; any failure, timeout or panic confirms
// the original result.
func escalate(ctx context.Context, def Definition, r Result) Result {
	if def.Fallback == nil || !IsBreakerOpen(r) {
		return r
	}

	timeout := def.FallbackTimeout
	if timeout <= 0 {
		timeout = DefaultFallbackTimeout
	}
	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				errCh <- fmt.Errorf("%w: %v", ErrProbePanic, rec)
			}
		}()
		errCh <- def.Fallback.Verify(verifyCtx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return r
		}
	case <-verifyCtx.Done():
		return r
	}

	metrics := maps.Clone(r.Metrics)
	if metrics == nil {
		metrics = make(map[string]float64, 1)
	}
	metrics["fallback_upgraded"] = 1

	return Result{
		Status:       StatusHealthy,
		Detail:       UpgradedDetail,
		ResponseTime: r.ResponseTime + time.Since(start),
		CheckedAt:    r.CheckedAt,
		Metrics:      metrics,
	}
}
