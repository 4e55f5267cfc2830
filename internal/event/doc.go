// Package event defines the core types that flow through a bubbling pass:
// entity identities, the EntityEvent payload contract, and the propagation
// envelope that carries one payload from a target entity up its ancestor
// chain.
//
// The envelope is the only channel a callback has for inspecting and
// controlling the pass it is part of. The bubbling driver constructs a
// fresh envelope per (event instance x listener invocation), publishes it
// to the world before executing the listener's callback, and reads the
// propagation flag afterward to decide whether to continue to the parent
// entity.
//
// The package also provides canonical JSON serialization (RFC 8785 style)
// and content-addressed delivery identities. These back the dispatch
// journal: the same delivery always hashes to the same ID, which makes
// journal writes idempotent.
package event
