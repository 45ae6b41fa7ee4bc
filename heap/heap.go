// Package heap provides the generic priority queue behind the deterministic topological sort of
// resolution plans.
package heap

import (
	"container/heap"

	"github.com/a-peyrard/haywire/fn"
)

// elements adapts a slice to container/heap.
type elements[T any] struct {
	items      []T
	comparator fn.Comparator[T]
}

// PriorityQueue pops its smallest element first, according to its comparator.
type PriorityQueue[T any] struct {
	elements *elements[T]
}

// New creates an empty priority queue ordered by comparator.
func New[T any](comparator fn.Comparator[T]) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		elements: &elements[T]{
			items:      make([]T, 0),
			comparator: comparator,
		},
	}
}

// From creates a priority queue holding values.
func From[T any](comparator fn.Comparator[T], values ...T) *PriorityQueue[T] {
	items := make([]T, len(values))
	copy(items, values)
	pq := &PriorityQueue[T]{
		elements: &elements[T]{items: items, comparator: comparator},
	}
	heap.Init(pq.elements)
	return pq
}

func (pq *PriorityQueue[T]) Push(elem T) {
	heap.Push(pq.elements, elem)
}

// Pop removes the smallest element, it panics on an empty queue.
func (pq *PriorityQueue[T]) Pop() T {
	return heap.Pop(pq.elements).(T)
}

func (pq *PriorityQueue[T]) Peek() T {
	return pq.elements.items[0]
}

// Drain pops every element, in order.
func (pq *PriorityQueue[T]) Drain() []T {
	res := make([]T, 0, pq.Len())
	for pq.IsNotEmpty() {
		res = append(res, pq.Pop())
	}
	return res
}

func (pq *PriorityQueue[T]) Len() int {
	return pq.elements.Len()
}

func (pq *PriorityQueue[T]) IsEmpty() bool {
	return pq.Len() == 0
}

func (pq *PriorityQueue[T]) IsNotEmpty() bool {
	return pq.Len() > 0
}

func (e *elements[T]) Len() int { return len(e.items) }

func (e *elements[T]) Less(i, j int) bool {
	return e.comparator(e.items[i], e.items[j]) == fn.Less
}

func (e *elements[T]) Swap(i, j int) {
	e.items[i], e.items[j] = e.items[j], e.items[i]
}

func (e *elements[T]) Push(x any) {
	e.items = append(e.items, x.(T))
}

func (e *elements[T]) Pop() any {
	old := e.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	e.items = old[:n-1]
	return item
}
