package dispatch

import (
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// Result summarizes one bubbling pass for the dispatching caller.
type Result struct {
	// Token is the dispatch token shared by every delivery of the pass.
	Token string

	// Event is the event name that was bubbled.
	Event string

	// Target is the entity the event was originally aimed at.
	Target event.EntityID

	// Deliveries lists the callback invocations made, in delivery order.
	Deliveries []world.Delivery

	// Stopped is true when a callback ended the pass early.
	Stopped bool

	// StoppedAt is the listener that stopped the pass, when Stopped.
	StoppedAt event.EntityID
}

// Delivered returns the number of callback invocations the pass made.
func (r *Result) Delivered() int {
	return len(r.Deliveries)
}
