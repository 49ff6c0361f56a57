package testutil

import (
	"sync"
	"time"
)

// FrozenClock provides a thread-safe time source pinned to a fixed instant.
//
// Unlike time.Now, a FrozenClock only moves when a test advances it.
// Feeding its Now method to index.WithClock gives rebuild provenance
// stable timestamps, so tests can assert on built_at values and index age
// without racing the wall clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FrozenClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFrozenClock creates a clock pinned to the given instant.
func NewFrozenClock(t time.Time) *FrozenClock {
	return &FrozenClock{t: t}
}

// Now returns the pinned instant.
//
// Thread-safe: uses mutex to protect the instant.
func (c *FrozenClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock by d and returns the new instant.
//
// Negative durations move the clock backwards; tests use that to
// manufacture stale timestamps.
func (c *FrozenClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// Set re-pins the clock to the given instant.
//
// Used for test reuse. After Set(t), Now() returns t until the clock
// moves again.
func (c *FrozenClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
