package world

// Resource slots hold transient values published into the world for the
// duration of one callback invocation. The primary user is the bubbling
// driver, which publishes the current propagation envelope immediately
// before Execute and takes it back immediately after - envelopes do not
// accumulate.
//
// Slots are backed by a concurrent map so registration-time and
// dispatch-time accesses from different goroutines stay safe. The
// envelope slot is additionally serialized: one world holds one current
// envelope, so concurrent passes take turns through WithInput rather
// than overwrite each other.

// listenerInputSlot is the reserved slot for the current envelope.
const listenerInputSlot = "ripple/listener-input"

// PublishResource stores a value under a named slot, replacing any
// previous value.
func (w *World) PublishResource(slot string, v any) {
	w.resources.Store(slot, v)
}

// Resource reads the value in a named slot.
func (w *World) Resource(slot string) (any, bool) {
	return w.resources.Load(slot)
}

// TakeResource removes and returns the value in a named slot.
func (w *World) TakeResource(slot string) (any, bool) {
	return w.resources.LoadAndDelete(slot)
}

// PublishInput publishes the current propagation envelope. Called by the
// driver before each Execute.
func (w *World) PublishInput(env any) {
	w.PublishResource(listenerInputSlot, env)
}

// Input reads the current propagation envelope without removing it.
// Callbacks access it through the typed dispatch.ListenerInput helper.
func (w *World) Input() (any, bool) {
	return w.Resource(listenerInputSlot)
}

// TakeInput removes and returns the current propagation envelope. Called
// by the driver after each Execute so envelopes never leak between
// invocations.
func (w *World) TakeInput() (any, bool) {
	return w.TakeResource(listenerInputSlot)
}

// WithInput publishes env for the duration of fn, then takes it back.
// The whole window holds the world's input lock: the envelope slot is a
// single slot per world, so concurrent invocation windows from
// independent passes must not interleave - without the lock one pass
// would overwrite or steal another's envelope mid-callback.
func (w *World) WithInput(env any, fn func() error) error {
	w.inputMu.Lock()
	defer w.inputMu.Unlock()

	w.PublishInput(env)
	defer w.TakeInput()

	return fn()
}
