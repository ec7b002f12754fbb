package stats

import "go.uber.org/atomic"

// Counter is a live byte count shared between exactly one transfer worker
// (writer) and at most one Reporter (reader). The worker stores its running
// total after every send; the value is monotonically non-decreasing while
// the transfer is active and frozen once the worker finishes.
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a Counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Store publishes the worker's running total.
func (c *Counter) Store(total int64) {
	c.n.Store(total)
}

// Load returns the most recently published total.
func (c *Counter) Load() int64 {
	return c.n.Load()
}
