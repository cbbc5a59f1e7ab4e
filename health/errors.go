package health

import "errors"

var (
	// ErrProbeTimeout indicates a probe did not answer within its budget.
	ErrProbeTimeout = errors.New("health: probe timeout")

	// ErrProbeCancelled indicates the refresh was cancelled before the probe answered.
	ErrProbeCancelled = errors.New("health: probe cancelled")

	// ErrProbePanic indicates a probe or verifier panicked.
	ErrProbePanic = errors.New("health: probe implementation error")

	// ErrNotConfigured indicates a dependency has no client configured.
	ErrNotConfigured = errors.New("health: dependency not configured")

	// ErrAggregationFailed indicates the snapshot could not be assembled.
	ErrAggregationFailed = errors.New("health: aggregation failed")
)

// Registration errors.
var (
	// ErrInvalidDefinition indicates a definition without a name or probe.
	ErrInvalidDefinition = errors.New("health: invalid probe definition")

	// ErrDuplicateProbe indicates a probe name is already registered.
	ErrDuplicateProbe = errors.New("health: duplicate probe name")

	// ErrRegistryFrozen indicates registration after the engine took ownership.
	ErrRegistryFrozen = errors.New("health: registry is frozen")
)

// ErrMonitorRunning indicates Start was called on a running monitor.
var ErrMonitorRunning = errors.New("health: monitor already running")
