package cache

import "sync/atomic"

// Store holds one value of type T with atomic replace semantics.
//
// Contract:
// - Concurrency: safe for concurrent use; Load never blocks.
// - Ownership: stored values are shared with readers and must be treated as
//   read-only after Store.
type Store[T any] struct {
	ptr atomic.Pointer[T]
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{}
}

// Load returns the current value. ok is false until the first Store.
func (s *Store[T]) Load() (value T, ok bool) {
	p := s.ptr.Load()
	if p == nil {
		return value, false
	}
	return *p, true
}

// Store replaces the current value.
func (s *Store[T]) Store(value T) {
	s.ptr.Store(&value)
}

// Swap replaces the current value and returns the previous one.
func (s *Store[T]) Swap(value T) (previous T, ok bool) {
	p := s.ptr.Swap(&value)
	if p == nil {
		return previous, false
	}
	return *p, true
}

// Clear drops the current value.
func (s *Store[T]) Clear() {
	s.ptr.Store(nil)
}
