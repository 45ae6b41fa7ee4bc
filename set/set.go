// Package set contains a minimal generic set.
package set

// Set is a set of comparable values backed by a map, the zero value is not usable.
type Set[T comparable] map[T]struct{}

func New[T comparable]() Set[T] {
	return make(Set[T])
}

func NewWithValues[T comparable](values ...T) Set[T] {
	return NewFromSlice(values)
}

// NewFromSlice deduplicates values, Size is the number of distinct ones.
func NewFromSlice[T comparable](values []T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

// AddIfAbsent adds value and reports whether it was missing.
func (s Set[T]) AddIfAbsent(value T) bool {
	if s.Contains(value) {
		return false
	}
	s.Add(value)
	return true
}

func (s Set[T]) Contains(value T) bool {
	_, found := s[value]
	return found
}

func (s Set[T]) DoesNotContain(value T) bool {
	return !s.Contains(value)
}

func (s Set[T]) Remove(value T) {
	delete(s, value)
}

func (s Set[T]) Size() int {
	return len(s)
}

func (s Set[T]) IsEmpty() bool {
	return len(s) == 0
}
