package testutil

import (
	"sync"
	"time"
)

// DefaultTime is the instant FixedClock starts at when none is given.
var DefaultTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// FixedClock is a deterministic wall clock for tests.
//
// Each call to Now returns the current instant and then advances it by the
// configured step. A zero step always returns the same instant, which makes
// generatedAtUtc byte-identical across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu    sync.Mutex
	now   time.Time
	step  time.Duration
	calls int
}

// NewFixedClock creates a clock frozen at start. A zero start uses
// DefaultTime.
func NewFixedClock(start time.Time) *FixedClock {
	return NewSteppingClock(start, 0)
}

// NewSteppingClock creates a clock that advances by step on every Now call.
func NewSteppingClock(start time.Time, step time.Duration) *FixedClock {
	if start.IsZero() {
		start = DefaultTime
	}
	return &FixedClock{now: start.UTC(), step: step}
}

// Now returns the current instant and advances the clock by its step.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	c.calls++
	return now
}

// Calls reports how many times Now was called.
func (c *FixedClock) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
