package event

// Envelope carries one event payload through a single listener invocation,
// together with the identity of the listening entity and the propagation
// flag the callback uses to stop the bubbling pass.
//
// Lifecycle: the driver constructs a fresh envelope immediately before a
// callback invocation, publishes it to the world, and discards it right
// after reading the propagation flag. Envelopes are never persisted and
// never shared across goroutines.
//
// The payload is held by pointer: mutations made through Data are
// mutations of the single underlying payload instance for this event
// instance, so they remain visible to ancestor listeners and to the
// driver after the callback returns.
type Envelope[E EntityEvent] struct {
	listener  EntityID
	data      *E
	propagate bool
}

// NewEnvelope wraps data for delivery to listener.
// The propagation flag starts true for every new envelope.
func NewEnvelope[E EntityEvent](listener EntityID, data *E) *Envelope[E] {
	return &Envelope[E]{
		listener:  listener,
		data:      data,
		propagate: true,
	}
}

// Listener returns the entity that was listening for this event. Call
// Data().Target() to get the entity the event originally targeted before
// it started bubbling. Target and listener can be the same entity.
func (e *Envelope[E]) Listener() EntityID {
	return e.listener
}

// Data returns the wrapped payload. The pointer is shared across all
// envelopes for this event instance; writes through it are writes to the
// one payload.
func (e *Envelope[E]) Data() *E {
	return e.data
}

// StopPropagation prevents the event from bubbling up to the listener's
// parent. Idempotent; only the final value at the end of the callback's
// execution window is observed by the driver.
func (e *Envelope[E]) StopPropagation() {
	e.propagate = false
}

// ShouldPropagate reports whether the driver should continue the pass to
// the next ancestor. Read by the driver after the callback returns.
func (e *Envelope[E]) ShouldPropagate() bool {
	return e.propagate
}
