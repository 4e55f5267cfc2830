// Package callback implements lazily-initialized units of work that run
// against the shared world store.
//
// A Cell owns the lifecycle of one callback: Empty, Uninitialized, or
// Ready. The first Execute initializes the callback against the world
// exactly once, then every Execute runs it and flushes the world's
// deferred command buffer before returning. The same *Cell may be
// registered at any number of listener sites; co-owners share the
// lifecycle, and a single mutex per cell keeps concurrent Execute calls
// from interleaving.
//
// Cells add no error handling of their own: initialization and run
// failures propagate to the dispatching caller unchanged.
package callback
