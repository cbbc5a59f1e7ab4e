// Package resilience guards dependency clients used by health probes.
//
// A probe that talks to a cache or a queue through a client-side circuit
// breaker must be able to tell "the dependency refused us" apart from "our
// breaker refused to call the dependency". The breaker in this package
// returns typed errors for both cases:
//
//   - ErrCircuitOpen: the breaker short-circuited the call; the dependency
//     was not contacted at all.
//
//   - ErrConnectionFailed: the call was attempted and failed. The underlying
//     client error is preserved and reachable with errors.Unwrap.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    Name:         "cache",
//	    MaxFailures:  3,
//	    ResetTimeout: 30 * time.Second,
//	})
//
//	guard := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	err := guard.Execute(ctx, func(ctx context.Context) error {
//	    return rdb.Ping(ctx).Err()
//	})
//	if errors.Is(err, resilience.ErrCircuitOpen) {
//	    // breaker open, dependency state unknown
//	}
package resilience
