package dispatch

import "sync/atomic"

// Clock is the monotonic logical clock that orders deliveries.
//
// Every delivery is stamped with a strictly increasing seq number from
// this clock. This ensures:
// - Deterministic ordering (no wall-clock race conditions)
// - Journal reads reproduce delivery order exactly
// - Causal relationships within a pass are explicit
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// so independent passes dispatching in parallel still draw unique seqs.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume stamping above an existing journal's high-water mark.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
