package testutil

import (
	"sync"
	"time"
)

// StepClock is a thread-safe fake clock for tests. Each call to Now
// advances it by Step, so successive timestamps are distinct and ordered.
type StepClock struct {
	mu    sync.Mutex
	base  time.Time
	step  time.Duration
	ticks int64
}

// NewStepClock creates a clock whose first Now() returns base+step.
func NewStepClock(base time.Time, step time.Duration) *StepClock {
	return &StepClock{base: base, step: step}
}

// Now advances the clock and returns the new time.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.base.Add(time.Duration(c.ticks) * c.step)
}

