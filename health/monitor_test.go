package health

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ishswami-Tech/healthops/observe"
)

func newMonitorEngine(t *testing.T, probe Probe, opts ...Option) *Engine {
	t.Helper()

	reg := newTestRegistry(t, Definition{Name: "database", Timeout: time.Minute, Probe: probe})
	opts = append([]Option{WithSystemCollector(staticCollector())}, opts...)
	return NewEngine(reg, opts...)
}

func TestNewMonitor_Defaults(t *testing.T) {
	m := NewMonitor(newMonitorEngine(t, healthyProbe()))

	if m.config.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", m.config.Interval, DefaultInterval)
	}
	if m.Running() {
		t.Error("Running() = true before Start")
	}
}

func TestMonitor_ImmediateRefresh(t *testing.T) {
	e := newMonitorEngine(t, healthyProbe())
	m := NewMonitor(e, MonitorConfig{Interval: time.Hour})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop(context.Background())

	waitFor(t, time.Second, func() bool {
		_, ok := e.Cached()
		return ok
	})
	waitFor(t, time.Second, func() bool { return !m.LastRefresh().IsZero() })
}

func TestMonitor_PeriodicRefreshAndStop(t *testing.T) {
	probe := &countingProbe{}
	e := newMonitorEngine(t, probe)
	m := NewMonitor(e, MonitorConfig{Interval: 10 * time.Millisecond})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return probe.calls.Load() >= 3 })

	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if m.Running() {
		t.Error("Running() = true after Stop")
	}

	calls := probe.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if got := probe.calls.Load(); got != calls {
		t.Errorf("probe calls after Stop = %d, want %d (ticker still running)", got, calls)
	}
}

func TestMonitor_StartTwice(t *testing.T) {
	m := NewMonitor(newMonitorEngine(t, healthyProbe()), MonitorConfig{Interval: time.Hour})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(context.Background()); !errors.Is(err, ErrMonitorRunning) {
		t.Errorf("second Start() error = %v, want ErrMonitorRunning", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Errorf("Start() after Stop error = %v", err)
	}
	_ = m.Stop(context.Background())
}

func TestMonitor_RestartAfterParentCancelled(t *testing.T) {
	m := NewMonitor(newMonitorEngine(t, healthyProbe()), MonitorConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	waitFor(t, time.Second, func() bool { return !m.Running() })

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() after parent cancel error = %v", err)
	}
	if !m.Running() {
		t.Error("Running() = false after restart")
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	m := NewMonitor(newMonitorEngine(t, healthyProbe()))
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
}

func TestMonitor_SkipsTickWhileRefreshInFlight(t *testing.T) {
	probe := &countingProbe{}
	e := newMonitorEngine(t, probe)
	m := NewMonitor(e, MonitorConfig{Interval: 10 * time.Millisecond})

	e.guard.TryAcquire()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer m.Stop(context.Background())

	waitFor(t, 2*time.Second, func() bool { return m.Skipped() >= 2 })
	if got := probe.calls.Load(); got != 0 {
		t.Errorf("probe calls while guarded = %d, want 0", got)
	}

	e.guard.Release()
	waitFor(t, 2*time.Second, func() bool {
		_, ok := e.Cached()
		return ok
	})
	if m.Ticks() < m.Skipped() {
		t.Errorf("Ticks() = %d < Skipped() = %d", m.Ticks(), m.Skipped())
	}
}

// flakyStore panics on its first writes.
type flakyStore struct {
	*countingStore
	panics atomic.Int32
}

func (s *flakyStore) Store(snap Snapshot) {
	if s.panics.Add(1) <= 2 {
		panic("disk full")
	}
	s.countingStore.Store(snap)
}

func TestMonitor_SurvivesPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)

	store := &flakyStore{countingStore: newCountingStore()}
	e := newMonitorEngine(t, healthyProbe(), WithStore(store))
	m := NewMonitor(e, MonitorConfig{Interval: 10 * time.Millisecond, Logger: logger})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return store.writes.Load() >= 1 })
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if !strings.Contains(buf.String(), "monitor refresh panicked") {
		t.Errorf("log output missing recovered panic:\n%s", buf.String())
	}
}

func TestMonitor_StopCancelsInFlightRefresh(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	e := newMonitorEngine(t, hangingProbe(release))
	m := NewMonitor(e, MonitorConfig{Interval: time.Hour})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, time.Second, e.Refreshing)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if _, ok := e.Cached(); ok {
		t.Error("cancelled refresh must not be stored")
	}
	if !m.LastRefresh().IsZero() {
		t.Error("LastRefresh() should stay zero for a cancelled refresh")
	}
}
