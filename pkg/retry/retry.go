// Package retry provides the bounded fixed-interval retry budget used for
// reconnect scheduling. The budget is consumed one attempt at a time and
// replenished only by an explicit Reset, so a flapping link cannot retry
// forever.
package retry

import (
	"sync"
	"time"
)

// Budget tracks how many retry attempts remain and the fixed delay before
// each one.
type Budget struct {
	mu       sync.Mutex
	interval time.Duration
	max      int
	used     int
}

// NewBudget creates a budget of max attempts spaced interval apart.
// A max of 0 means no retries at all.
func NewBudget(interval time.Duration, max int) *Budget {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if max < 0 {
		max = 0
	}
	return &Budget{interval: interval, max: max}
}

// Next consumes one attempt and returns the delay to wait before it.
// ok is false when the budget is exhausted; the budget is unchanged then.
func (b *Budget) Next() (delay time.Duration, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.max {
		return 0, false
	}
	b.used++
	return b.interval, true
}

// Reset replenishes the budget. Called after a successful connection or an
// explicit resume.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = 0
}

// Used returns how many attempts have been consumed since the last Reset.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Remaining returns how many attempts are left.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max - b.used
}

// Interval returns the fixed delay between attempts.
func (b *Budget) Interval() time.Duration {
	return b.interval
}
