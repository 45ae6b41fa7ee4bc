// Package concurrent contains collections safe for concurrent use.
package concurrent

import "sync"

// Slice is an append-only slice safe for concurrent use.
type Slice[T any] struct {
	inner []T
	mu    sync.RWMutex
}

func NewSlice[T any](values ...T) *Slice[T] {
	inner := make([]T, 0, len(values))
	return &Slice[T]{
		inner: append(inner, values...),
	}
}

// Append adds values at the end of the slice.
func (s *Slice[T]) Append(values ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = append(s.inner, values...)
}

// Snapshot returns a copy of the current contents.
func (s *Slice[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.inner))
	copy(result, s.inner)
	return result
}

func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inner)
}
