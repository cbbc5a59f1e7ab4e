package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// runProbe races one probe against its timeout.
//
// It always returns within def.Timeout plus scheduling slack. A probe that
// outlives its budget is abandoned: its context is cancelled and its late
// result lands in a buffered channel nobody reads.
func runProbe(ctx context.Context, def Definition) Result {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()

	resultCh := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- Unhealthy("probe implementation error", fmt.Errorf("%w: %v", ErrProbePanic, r))
			}
		}()
		resultCh <- def.Probe.Check(probeCtx)
	}()

	timer := time.NewTimer(def.Timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		switch {
		case ctx.Err() != nil:
			return cancelledResult(ctx, def, start)
		case errors.Is(probeCtx.Err(), context.DeadlineExceeded):
			// answered only because its deadline fired
			return timeoutResult(def, start)
		}
		return normalise(result, start)

	case <-timer.C:
		return timeoutResult(def, start)

	case <-ctx.Done():
		return cancelledResult(ctx, def, start)
	}
}

func cancelledResult(ctx context.Context, def Definition, start time.Time) Result {
	return Result{
		Status:       StatusUnhealthy,
		Detail:       def.Name + " health check cancelled",
		ResponseTime: time.Since(start),
		CheckedAt:    start,
		Error:        fmt.Errorf("%w: %w", ErrProbeCancelled, ctx.Err()),
	}
}

func timeoutResult(def Definition, start time.Time) Result {
	return Result{
		Status:       StatusUnhealthy,
		Detail:       def.Name + " health check timeout",
		ResponseTime: def.Timeout,
		CheckedAt:    start,
		Error:        ErrProbeTimeout,
	}
}

// normalise enforces the probe-level status set and fills timing fields the
// probe left empty.
func normalise(r Result, start time.Time) Result {
	if r.Status != StatusHealthy {
		r.Status = StatusUnhealthy
	}
	if r.ResponseTime <= 0 {
		r.ResponseTime = time.Since(start)
	}
	if r.CheckedAt.IsZero() {
		r.CheckedAt = start
	}
	if r.Detail == "" {
		if r.Error != nil {
			r.Detail = r.Error.Error()
		} else {
			r.Detail = r.Status.String()
		}
	}
	return r
}
