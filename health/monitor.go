package health

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ishswami-Tech/healthops/observe"
)

// DefaultInterval is the period between background refreshes.
const DefaultInterval = 30 * time.Second

// MonitorConfig configures a Monitor.
type MonitorConfig struct {
	// Interval is the period between refreshes.
	// Default: 30 seconds
	Interval time.Duration

	// Logger receives skipped ticks and recovered panics.
	Logger observe.Logger
}

// Monitor refreshes an engine's snapshot in the background so health data
// exists without inbound traffic.
//
// It refreshes once on Start and then every Interval. A tick that finds a
// refresh in flight is skipped, not queued.
type Monitor struct {
	engine *Engine
	config MonitorConfig

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running sync.WaitGroup

	lastRefresh atomic.Int64
	ticks       atomic.Int64
	skipped     atomic.Int64
}

// NewMonitor creates a monitor for engine.
func NewMonitor(engine *Engine, config ...MonitorConfig) *Monitor {
	var cfg MonitorConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	return &Monitor{engine: engine, config: cfg}
}

// Start begins background refreshing. The loop stops when ctx is cancelled or
// Stop is called; either way the monitor can be started again.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrMonitorRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.loop(loopCtx, m.done)
	return nil
}

// Stop cancels the loop and waits for it and any in-flight refresh to finish,
// or for ctx to expire.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// LastRefresh returns when the monitor last completed a refresh.
func (m *Monitor) LastRefresh() time.Time {
	ns := m.lastRefresh.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Ticks returns how many refreshes the monitor attempted.
func (m *Monitor) Ticks() int64 {
	return m.ticks.Load()
}

// Skipped returns how many ticks found a refresh already in flight.
func (m *Monitor) Skipped() int64 {
	return m.skipped.Load()
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer m.release(done)
	defer m.running.Wait()

	m.spawn(ctx)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.spawn(ctx)
		}
	}
}

// release clears the loop's registration when it exits on its own, so a
// cancelled parent context leaves the monitor stopped and restartable.
func (m *Monitor) release(done chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != done {
		return
	}
	m.cancel()
	m.cancel, m.done = nil, nil
}

// spawn runs one tick off the loop goroutine so a slow refresh cannot delay
// the ticker; the engine guard rejects the overlap instead.
func (m *Monitor) spawn(ctx context.Context) {
	m.running.Add(1)
	go func() {
		defer m.running.Done()
		m.tick(ctx)
	}()
}

func (m *Monitor) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.config.Logger.Error(ctx, "monitor refresh panicked", observe.F("error", fmt.Sprint(r)))
		}
	}()

	m.ticks.Add(1)
	snap, ok := m.engine.Refresh(ctx, TriggerMonitor)
	if !ok {
		m.skipped.Add(1)
		m.config.Logger.Debug(ctx, "monitor tick skipped, refresh in flight")
		return
	}

	if ctx.Err() != nil {
		return
	}
	m.lastRefresh.Store(m.engine.now().UnixNano())
	if snap.Status != StatusHealthy {
		m.config.Logger.Warn(ctx, "service degraded",
			observe.F("snapshot_id", snap.ID.String()),
			observe.F("critical_failures", snap.CriticalFailures),
		)
	}
}
