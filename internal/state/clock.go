package state

import "sync/atomic"

// Clock is a monotonic logical counter. The store and the connection set each
// use one as their revision.
type Clock struct {
	counter atomic.Uint64
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	return c.counter.Add(1)
}

func (c *Clock) Now() uint64 {
	return c.counter.Load()
}
