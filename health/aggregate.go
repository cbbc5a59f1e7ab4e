package health

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the aggregate picture of every probe at one instant.
//
// A Snapshot is read-only once built; Results is shared between readers of the
// same cached value and must not be mutated.
type Snapshot struct {
	// ID identifies the refresh cycle that produced the snapshot.
	ID uuid.UUID

	// Status is StatusHealthy or StatusDegraded, never StatusUnhealthy.
	Status Status

	// GeneratedAt is when the probes were aggregated.
	GeneratedAt time.Time

	// ServedAt is when the snapshot was handed to the caller. It differs from
	// GeneratedAt when a cached snapshot is served.
	ServedAt time.Time

	// Results maps probe name to its result.
	Results map[string]Result

	// System is the process metrics sampled at aggregation time.
	System SystemMetrics

	// CriticalFailures lists, in registration order, critical probes that are
	// unhealthy. It is informational and does not affect Status.
	CriticalFailures []string
}

// Age returns how old the snapshot was when it was served.
func (s Snapshot) Age() time.Duration {
	if s.ServedAt.Before(s.GeneratedAt) {
		return 0
	}
	return s.ServedAt.Sub(s.GeneratedAt)
}

// OverallStatus reduces probe results to the service status: healthy when
// every result is healthy, degraded otherwise. An empty set is healthy.
//
// A failed dependency degrades the advertised status but never marks the
// whole service unhealthy; the process answering the check is still alive.
func OverallStatus(results map[string]Result) Status {
	for _, result := range results {
		if result.Status != StatusHealthy {
			return StatusDegraded
		}
	}
	return StatusHealthy
}

// Aggregate builds a snapshot from probe results. Every definition appears in
// the snapshot; one without a result is reported unhealthy.
func Aggregate(results map[string]Result, defs []Definition, system SystemMetrics, id uuid.UUID, now time.Time) Snapshot {
	out := make(map[string]Result, len(defs))
	var critical []string

	for _, def := range defs {
		result, ok := results[def.Name]
		if !ok {
			result = Result{
				Status:    StatusUnhealthy,
				Detail:    "no result",
				CheckedAt: now,
				Error:     fmt.Errorf("%w: %s produced no result", ErrAggregationFailed, def.Name),
			}
		}
		out[def.Name] = result

		if def.Critical && result.Status != StatusHealthy {
			critical = append(critical, def.Name)
		}
	}

	return Snapshot{
		ID:               id,
		Status:           OverallStatus(out),
		GeneratedAt:      now,
		ServedAt:         now,
		Results:          out,
		System:           system,
		CriticalFailures: critical,
	}
}

// FailedSnapshot synthesizes a degraded snapshot in which every probe is
// unhealthy with an explanatory detail. It stands in for a snapshot that could
// not be assembled.
func FailedSnapshot(defs []Definition, cause error, now time.Time) Snapshot {
	err := fmt.Errorf("%w: %v", ErrAggregationFailed, cause)
	detail := err.Error()

	results := make(map[string]Result, len(defs))
	var critical []string
	for _, def := range defs {
		results[def.Name] = Result{
			Status:    StatusUnhealthy,
			Detail:    detail,
			CheckedAt: now,
			Error:     err,
		}
		if def.Critical {
			critical = append(critical, def.Name)
		}
	}

	return Snapshot{
		ID:               uuid.New(),
		Status:           StatusDegraded,
		GeneratedAt:      now,
		ServedAt:         now,
		Results:          results,
		CriticalFailures: critical,
	}
}

// restrict returns the snapshot narrowed to defs, with status and critical
// failures recomputed.
func (s Snapshot) restrict(defs []Definition) Snapshot {
	results := make(map[string]Result, len(defs))
	for _, def := range defs {
		if result, ok := s.Results[def.Name]; ok {
			results[def.Name] = result
		}
	}
	narrowed := Aggregate(results, defs, s.System, s.ID, s.GeneratedAt)
	narrowed.ServedAt = s.ServedAt
	return narrowed
}
