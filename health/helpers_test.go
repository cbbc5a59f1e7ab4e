package health

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ishswami-Tech/healthops/cache"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingStore counts writes to an in-memory snapshot store.
type countingStore struct {
	inner  *cache.Store[Snapshot]
	writes atomic.Int32
}

func newCountingStore() *countingStore {
	return &countingStore{inner: cache.NewStore[Snapshot]()}
}

func (s *countingStore) Load() (Snapshot, bool) { return s.inner.Load() }

func (s *countingStore) Store(snap Snapshot) {
	s.writes.Add(1)
	s.inner.Store(snap)
}

// countingProbe is healthy and counts its invocations.
type countingProbe struct {
	calls atomic.Int32
}

func (p *countingProbe) Check(ctx context.Context) Result {
	p.calls.Add(1)
	return Healthy("ok")
}

func healthyProbe() Probe {
	return ProbeFunc(func(ctx context.Context) Result { return Healthy("connected") })
}

func failingProbe(detail string) Probe {
	return ProbeFunc(func(ctx context.Context) Result { return Unhealthy(detail, nil) })
}

// hangingProbe blocks until ctx is done or release is closed.
func hangingProbe(release <-chan struct{}) Probe {
	return ProbeFunc(func(ctx context.Context) Result {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return Healthy("late")
	})
}

func newTestRegistry(t *testing.T, defs ...Definition) *Registry {
	t.Helper()

	reg := NewRegistry()
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			t.Fatalf("Register(%q) error = %v", def.Name, err)
		}
	}
	return reg
}

func staticCollector() SystemCollector {
	return SystemCollectorFunc(func() SystemMetrics {
		return SystemMetrics{Uptime: time.Minute}
	})
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
