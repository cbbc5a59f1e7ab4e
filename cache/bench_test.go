package cache

import (
	"testing"
	"time"
)

type benchSnapshot struct {
	id      int
	results map[string]int
}

// BenchmarkStore_Load measures the read path served to health readers.
func BenchmarkStore_Load(b *testing.B) {
	s := NewStore[benchSnapshot]()
	s.Store(benchSnapshot{id: 1, results: map[string]int{"database": 0}})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Load()
	}
}

// BenchmarkStore_LoadParallel measures concurrent readers.
func BenchmarkStore_LoadParallel(b *testing.B) {
	s := NewStore[benchSnapshot]()
	s.Store(benchSnapshot{id: 1})

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = s.Load()
		}
	})
}

// BenchmarkStore_Store measures publishing a snapshot.
func BenchmarkStore_Store(b *testing.B) {
	s := NewStore[benchSnapshot]()
	v := benchSnapshot{id: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Store(v)
	}
}

// BenchmarkGuard_TryAcquireRelease measures an uncontended refresh cycle guard.
func BenchmarkGuard_TryAcquireRelease(b *testing.B) {
	var g Guard

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if g.TryAcquire() {
			g.Release()
		}
	}
}

// BenchmarkPolicy_IsFresh measures the freshness decision.
func BenchmarkPolicy_IsFresh(b *testing.B) {
	p := DefaultPolicy()
	generated := time.Now()
	now := generated.Add(time.Second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.IsFresh(generated, now)
	}
}
