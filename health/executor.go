package health

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Ishswami-Tech/healthops/observe"
)

// Executor fans probe definitions out concurrently and collects every result.
//
// Each probe runs through its own timed runner, so a hanging or failing probe
// never delays, cancels or overwrites another. Total latency is bounded by the
// slowest single Timeout plus FallbackTimeout, not their sum.
type Executor struct {
	middleware *observe.Middleware
}

// NewExecutor creates an executor. A nil middleware disables telemetry.
func NewExecutor(mw *observe.Middleware) *Executor {
	if mw == nil {
		mw = observe.NoopMiddleware()
	}
	return &Executor{middleware: mw}
}

// Run checks every definition and returns results keyed by probe name.
func (e *Executor) Run(ctx context.Context, defs []Definition) map[string]Result {
	results := make(map[string]Result, len(defs))
	var mu sync.Mutex

	// No WithContext: a failed probe must not cancel its siblings.
	var g errgroup.Group
	for _, def := range defs {
		g.Go(func() error {
			result := e.check(ctx, def)

			mu.Lock()
			results[def.Name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) check(ctx context.Context, def Definition) Result {
	var result Result

	check := e.middleware.Wrap(func(ctx context.Context, _ observe.ProbeMeta) error {
		result = escalate(ctx, def, runProbe(ctx, def))
		return result.err()
	})
	_ = check(ctx, def.meta())

	return result
}
