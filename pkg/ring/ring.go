// Package ring provides a generic, thread-safe bounded ring that keeps the
// most recent N items. When full, the oldest item is evicted to make room.
// Statistics are always collected for observability.
package ring

import (
	"sync"
	"sync/atomic"
)

// Ring is a fixed-capacity, order-preserving buffer of the most recent items.
// Append never blocks and never fails; the oldest item is dropped on overflow.
type Ring[T any] struct {
	mu       sync.RWMutex
	items    []T
	capacity int
	size     int
	head     int // next write position
	tail     int // oldest item position
	stats    *Statistics
}

// New creates a ring with the given capacity. Capacity below 1 is clamped to 1.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
		stats:    &Statistics{},
	}
}

// Append adds an item, evicting the oldest when the ring is full.
func (r *Ring[T]) Append(item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == r.capacity {
		r.tail = (r.tail + 1) % r.capacity
		r.size--
		r.stats.drops.Add(1)
	}

	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	r.size++

	r.stats.writes.Add(1)
	r.stats.size.Store(int64(r.size))
}

// Snapshot returns a copy of the current contents, oldest first.
// The returned slice is owned by the caller; mutating it cannot
// affect ring state.
func (r *Ring[T]) Snapshot() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.tail+i)%r.capacity]
	}
	return out
}

// Len returns the current number of items.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the maximum number of items the ring can hold.
func (r *Ring[T]) Cap() int {
	return r.capacity // immutable, no lock needed
}

// Clear removes all items.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.tail = 0
	r.size = 0
	r.stats.size.Store(0)
}

// Stats returns ring statistics (always available for observability).
func (r *Ring[T]) Stats() *Statistics {
	return r.stats
}

// Statistics tracks ring activity with atomic counters.
type Statistics struct {
	writes atomic.Int64
	drops  atomic.Int64
	size   atomic.Int64
}

// Writes returns the total number of appended items.
func (s *Statistics) Writes() int64 { return s.writes.Load() }

// Drops returns the total number of items evicted by overflow.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// Size returns the last observed ring size.
func (s *Statistics) Size() int64 { return s.size.Load() }
