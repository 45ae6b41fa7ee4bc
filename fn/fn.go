package fn

import "cmp"

// ComparisonResult represents the result of comparing two values.
type ComparisonResult int

const (
	Equal   ComparisonResult = 0
	Less    ComparisonResult = -1
	Greater ComparisonResult = 1
)

// Comparator represents a function that compares two values of type T.
type Comparator[T any] func(i1 T, i2 T) ComparisonResult

// NaturalOrder compares ordered values.
func NaturalOrder[T cmp.Ordered](i1 T, i2 T) ComparisonResult {
	return ComparisonResult(cmp.Compare(i1, i2))
}

// CompareBy returns a comparator comparing the values extracted by extractor.
func CompareBy[T any, K cmp.Ordered](extractor func(T) K) Comparator[T] {
	return func(i1 T, i2 T) ComparisonResult {
		return NaturalOrder(extractor(i1), extractor(i2))
	}
}

// TriConsumer represents a function that accepts three input arguments and returns no result.
type TriConsumer[T1 any, T2 any, T3 any] func(t1 T1, t2 T2, t3 T3)

// AllTriConsumer creates a tri-consumer that will execute all the given tri-consumers.
func AllTriConsumer[A any, B any, C any](consumers ...TriConsumer[A, B, C]) TriConsumer[A, B, C] {
	return func(a A, b B, c C) {
		for _, consumer := range consumers {
			consumer(a, b, c)
		}
	}
}
