package resilience

import (
	"errors"
	"fmt"
)

// Sentinel errors for guarded dependency calls.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without contacting the dependency.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrConnectionFailed marks a call that reached the dependency client
	// and failed.
	ErrConnectionFailed = errors.New("resilience: dependency call failed")

	// ErrTimeout is returned when a guarded call exceeds its time limit.
	ErrTimeout = errors.New("resilience: operation timed out")
)

// ConnectionError wraps a dependency client error so callers can match it
// with errors.Is(err, ErrConnectionFailed) and still reach the cause.
type ConnectionError struct {
	Dependency string
	Err        error
}

func (e *ConnectionError) Error() string {
	if e.Dependency == "" {
		return fmt.Sprintf("connection failed: %v", e.Err)
	}
	return fmt.Sprintf("%s: connection failed: %v", e.Dependency, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports ErrConnectionFailed as a match.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// AsConnectionError wraps err in a ConnectionError unless it is nil or
// already carries a breaker verdict.
func AsConnectionError(dependency string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrConnectionFailed) {
		return err
	}
	return &ConnectionError{Dependency: dependency, Err: err}
}
