package testutil

import "sync"

// LogicalClock is a thread-safe monotonic counter for trace sequence numbers.
// Traces stamped with it are identical across runs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type LogicalClock struct {
	mu  sync.Mutex
	seq int64
}

// NewLogicalClock creates a clock starting at 0. The first Next returns 1.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// Next increments and returns the next sequence number.
func (c *LogicalClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *LogicalClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}
