package whack

import "sync/atomic"

// Counter is the round's shared score. All methods are safe for concurrent
// use; Increment is linearizable, so concurrent hits are never lost.
type Counter struct {
	n atomic.Int64
}

// Increment adds one point and returns the new score.
func (c *Counter) Increment() int {
	return int(c.n.Add(1))
}

// Reset sets the score back to zero.
func (c *Counter) Reset() {
	c.n.Store(0)
}

// Get returns the current score.
func (c *Counter) Get() int {
	return int(c.n.Load())
}
