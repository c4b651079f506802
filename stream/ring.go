package stream

import (
	"sync"
)

// RingBuffer retains the most recent size elements added to it.
// Readers see insertion order, oldest first. Safe for concurrent use;
// the web daemon hammers it with status reads while retrievals write.
type RingBuffer[T any] struct {
	mu    sync.RWMutex
	items []T
	start int
	size  int
}

func NewRingBuffer[T any](size int) *RingBuffer[T] {
	return &RingBuffer[T]{items: make([]T, 0, size), size: size}
}

// Add appends value, evicting the oldest element once full.
func (rb *RingBuffer[T]) Add(value T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if len(rb.items) < rb.size {
		rb.items = append(rb.items, value)
		return
	}
	rb.items[rb.start] = value
	rb.start = (rb.start + 1) % rb.size
}

// at returns the i-th oldest element. Callers hold the lock.
func (rb *RingBuffer[T]) at(i int) T {
	return rb.items[(rb.start+i)%len(rb.items)]
}

// Get copies out the retained elements, oldest first.
func (rb *RingBuffer[T]) Get() []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	out := make([]T, 0, len(rb.items))
	for i := range rb.items {
		out = append(out, rb.at(i))
	}
	return out
}

func (rb *RingBuffer[T]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return len(rb.items)
}

// First returns the oldest retained element, the zero value when empty.
func (rb *RingBuffer[T]) First() T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	var zero T
	if len(rb.items) == 0 {
		return zero
	}
	return rb.at(0)
}

// Last returns the most recently added element, the zero value when empty.
func (rb *RingBuffer[T]) Last() T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	var zero T
	if len(rb.items) == 0 {
		return zero
	}
	return rb.at(len(rb.items) - 1)
}

// Scan visits elements oldest first until fn returns false.
func (rb *RingBuffer[T]) Scan(fn func(T) bool) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	for i := range rb.items {
		if !fn(rb.at(i)) {
			return
		}
	}
}
