package health

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ishswami-Tech/healthops/cache"
	"github.com/Ishswami-Tech/healthops/observe"
)

// Refresh triggers, recorded on refresh metrics.
const (
	TriggerMonitor  = "monitor"
	TriggerRead     = "read"
	TriggerDetailed = "detailed"
	TriggerManual   = "manual"
)

// SnapshotStore holds the most recent snapshot with atomic replace semantics.
// *cache.Store[Snapshot] satisfies it.
type SnapshotStore interface {
	Load() (Snapshot, bool)
	Store(Snapshot)
}

// DetailedSnapshot is the always-fresh read: every probe including
// development tooling, plus process identity.
type DetailedSnapshot struct {
	Snapshot
	Process ProcessInfo
}

// Engine answers "is the system healthy?".
//
// Contract:
//   - Concurrency: safe for concurrent use. At most one stored refresh runs at
//     a time; reads never wait for it.
//   - Errors: GetHealth and GetDetailedHealth never panic and always return a
//     well-formed snapshot.
type Engine struct {
	defs    []Definition
	devDefs []Definition

	executor *Executor
	store    SnapshotStore
	guard    cache.Guard
	policy   cache.Policy

	now     func() time.Time
	system  SystemCollector
	process ProcessInfo

	logger  observe.Logger
	metrics observe.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the snapshot store. Default: an in-memory cache.Store.
func WithStore(store SnapshotStore) Option {
	return func(e *Engine) {
		if store != nil {
			e.store = store
		}
	}
}

// WithPolicy sets the freshness policy. Default: cache.DefaultPolicy().
func WithPolicy(policy cache.Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithClock sets the clock used for freshness and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSystemCollector sets the system metrics collector.
// Default: a RuntimeCollector.
func WithSystemCollector(c SystemCollector) Option {
	return func(e *Engine) {
		if c != nil {
			e.system = c
		}
	}
}

// WithProcessInfo sets the process identity returned by detailed reads.
func WithProcessInfo(info ProcessInfo) Option {
	return func(e *Engine) {
		e.process = info
	}
}

// WithDevProbes adds development tooling probes to detailed reads. They run
// only when the process environment is not production. The registry is frozen.
func WithDevProbes(reg *Registry) Option {
	return func(e *Engine) {
		if reg == nil {
			return
		}
		reg.Freeze()
		e.devDefs = reg.Definitions()
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger observe.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMiddleware sets the per-probe telemetry middleware.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(e *Engine) {
		e.executor = NewExecutor(mw)
	}
}

// WithMetrics sets the refresh metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// NewEngine creates an engine over the probes in reg. The registry is frozen.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	e := &Engine{
		executor: NewExecutor(nil),
		store:    cache.NewStore[Snapshot](),
		policy:   cache.DefaultPolicy(),
		now:      time.Now,
		system:   NewRuntimeCollector(time.Time{}),
		process:  CurrentProcess("", ""),
		logger:   observe.NopLogger(),
		metrics:  observe.NoopMetrics(),
	}
	if reg != nil {
		reg.Freeze()
		e.defs = reg.Definitions()
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Definitions returns the base probe definitions.
func (e *Engine) Definitions() []Definition {
	return slices.Clone(e.defs)
}

// Refresh probes every base dependency and stores the snapshot.
//
// It returns false without probing when another stored refresh is in flight.
// The store is written at most once per completed cycle, and not at all when
// ctx is cancelled during the cycle.
func (e *Engine) Refresh(ctx context.Context, trigger string) (Snapshot, bool) {
	if !e.guard.TryAcquire() {
		e.metrics.RecordRefresh(ctx, observe.RefreshMeta{Trigger: trigger, Skipped: true}, 0)
		return Snapshot{}, false
	}
	defer e.guard.Release()

	start := time.Now()
	snap := e.compute(ctx, e.defs)
	e.commit(ctx, trigger, snap, start)
	return snap, true
}

// commit stores a completed base snapshot and records the cycle. A cycle whose
// ctx was cancelled is recorded as cancelled and leaves the store untouched.
// Must be called with the guard held.
func (e *Engine) commit(ctx context.Context, trigger string, snap Snapshot, start time.Time) {
	meta := observe.RefreshMeta{Trigger: trigger, Overall: snap.Status.String()}
	if ctx.Err() != nil {
		meta.Cancelled = true
	} else {
		e.store.Store(snap)
	}
	e.metrics.RecordRefresh(context.WithoutCancel(ctx), meta, time.Since(start))
}

// GetHealth returns the cached snapshot while it is fresh and refreshes it
// otherwise. When a refresh is already in flight it serves the stale snapshot,
// or an unstored one if nothing was cached yet.
func (e *Engine) GetHealth(ctx context.Context) (snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			snap = e.failed(ctx, e.defs, r)
		}
	}()

	now := e.now()
	cached, ok := e.store.Load()
	if ok && e.policy.IsFresh(cached.GeneratedAt, now) {
		cached.ServedAt = now
		return cached
	}

	if fresh, refreshed := e.Refresh(ctx, TriggerRead); refreshed {
		return fresh
	}

	if ok {
		cached.ServedAt = now
		return cached
	}
	return e.compute(ctx, e.defs)
}

// GetDetailedHealth always probes every dependency, including development
// tooling outside production. The base snapshot is stored when no other
// refresh is in flight and ctx was not cancelled during the cycle.
func (e *Engine) GetDetailedHealth(ctx context.Context) (detailed DetailedSnapshot) {
	defs := e.detailedDefinitions()

	defer func() {
		if r := recover(); r != nil {
			detailed = DetailedSnapshot{Snapshot: e.failed(ctx, defs, r), Process: e.process}
		}
	}()

	acquired := e.guard.TryAcquire()
	if acquired {
		defer e.guard.Release()
	}

	start := time.Now()
	full := e.compute(ctx, defs)

	if acquired {
		e.commit(ctx, TriggerDetailed, full.restrict(e.defs), start)
	} else {
		e.metrics.RecordRefresh(ctx, observe.RefreshMeta{Trigger: TriggerDetailed, Skipped: true}, 0)
	}

	return DetailedSnapshot{Snapshot: full, Process: e.process}
}

// Cached returns the stored snapshot without probing.
func (e *Engine) Cached() (Snapshot, bool) {
	return e.store.Load()
}

// Refreshing reports whether a stored refresh is in flight.
func (e *Engine) Refreshing() bool {
	return e.guard.Held()
}

// IsProduction reports whether the process runs in a production environment.
func (e *Engine) IsProduction() bool {
	return IsProduction(e.process.Environment)
}

// IsProduction reports whether env names a production environment.
func IsProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

func (e *Engine) detailedDefinitions() []Definition {
	if len(e.devDefs) == 0 || e.IsProduction() {
		return e.defs
	}
	return slices.Concat(e.defs, e.devDefs)
}

// compute runs the probes and aggregates them. A panic while aggregating
// yields a failed snapshot.
func (e *Engine) compute(ctx context.Context, defs []Definition) (snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			snap = e.failed(ctx, defs, r)
		}
	}()

	results := e.executor.Run(ctx, defs)
	return Aggregate(results, defs, e.system.Collect(), uuid.New(), e.now())
}

func (e *Engine) failed(ctx context.Context, defs []Definition, cause any) Snapshot {
	err := fmt.Errorf("%v", cause)
	e.logger.Error(ctx, "health aggregation failed", observe.F("error", err))
	return FailedSnapshot(defs, err, e.now())
}
