// Package dispatch implements the bubbling driver.
//
// The driver owns the listener registry and walks the entity hierarchy
// for each dispatched event: starting at the event's target, it invokes
// the callback registered for (event name, entity), then moves to the
// parent, until the hierarchy is exhausted or a callback stops the pass.
//
// Per listener invocation the driver constructs a fresh propagation
// envelope, publishes it to the world, executes the callback's cell, and
// takes the envelope back to read the stop flag. Once a callback stops
// propagation, no envelope is constructed for any ancestor of that
// listener for this event instance.
//
// Every delivery is stamped with a monotonic sequence number from the
// driver's logical clock and journaled in the world under a per-event
// dispatch token. Ordering is always by seq; never by wall clock.
//
// Two guards keep a pass finite: a visited set breaks parent-chain cycles
// and a depth quota bounds how far an event may bubble. Together they
// guarantee termination even on malformed hierarchies.
//
// One bubbling pass is strictly sequential: listener by listener on the
// calling goroutine. Independent passes may run concurrently; a shared
// cell serializes them at the callback-instance level. Events can also be
// enqueued and drained by a single-writer Run loop when callers want
// FIFO ordering across dispatches.
package dispatch
