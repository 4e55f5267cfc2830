// Package world implements the shared mutable store callbacks run against.
//
// The world holds three kinds of state:
//
//   - The entity hierarchy: entities with optional parents, persisted in
//     SQLite. The bubbling driver walks parent links to find the next
//     listener in a pass.
//   - Keyed entity state: string key/value pairs attached to entities.
//     Callbacks read state directly and mutate it either directly (during
//     initialization wiring) or through the command buffer.
//   - The dispatch journal: an append-only record of every delivery made
//     by the driver, keyed by content-addressed delivery IDs so writes
//     are idempotent.
//
// Deferred mutations follow a command-buffer pattern: callbacks queue
// commands during their run step, and the executing cell flushes them all
// in a single transaction via ApplyDeferred immediately after the run
// step. Nothing stays pending across executions.
//
// The world also carries the envelope publication channel: a typed slot
// the driver fills with the current propagation envelope before invoking
// a callback and clears right after. The slot is single-valued, so
// WithInput serializes invocation windows; concurrent passes on one
// world take turns instead of overwriting each other's envelope.
//
// Concurrency: the world assumes one mutator at a time for the duration
// of an Execute call; WithInput provides that exclusion for the driver.
// The resource slots and the command buffer are internally synchronized
// so registration-time and dispatch-time accesses from different
// goroutines stay safe.
package world
