package cache

import "sync/atomic"

// Guard is a non-blocking try-lock used as a re-entrancy guard.
type Guard struct {
	held atomic.Bool
}

// TryAcquire takes the guard if it is free. It never blocks.
func (g *Guard) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release frees the guard.
func (g *Guard) Release() {
	g.held.Store(false)
}

// Held reports whether the guard is currently taken.
func (g *Guard) Held() bool {
	return g.held.Load()
}
