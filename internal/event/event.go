package event

// EntityID identifies an entity in the world hierarchy.
//
// IDs are allocated by the world store and are never reused within one
// world database. The zero value is NoEntity and is never a valid entity.
type EntityID int64

// NoEntity is the zero EntityID. It marks "no parent" on root entities
// and is never returned by Spawn.
const NoEntity EntityID = 0

// EntityEvent is implemented by event payloads that target an entity.
//
// Target returns the entity the event was originally aimed at, before any
// bubbling. This is distinct from the listener currently handling the
// event, which lives on the envelope (see Envelope.Listener).
//
// Payloads are usually pointer types so that mutations made by one
// listener are visible to listeners further up the chain and to the
// driver after the pass.
type EntityEvent interface {
	Target() EntityID
}
