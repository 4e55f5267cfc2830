package dispatch

import (
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// ListenerInput returns the propagation envelope published into w for the
// current callback invocation, typed to the event the callback handles.
//
// Use this inside callback run steps to read event data, learn which
// entity is handling the event, mutate the payload, or stop the pass:
//
//	func (c *greeter) Run(ctx context.Context, w *world.World) error {
//		env, ok := dispatch.ListenerInput[Greet](w)
//		if !ok {
//			return nil
//		}
//		env.Data().Count++        // mutate the bubbling payload
//		_ = env.Data().Target()   // the originally targeted entity
//		_ = env.Listener()        // the entity listening right now
//		env.StopPropagation()     // end the pass here
//		return nil
//	}
//
// The second return value is false when no envelope is published or when
// the published envelope wraps a different event type - both mean the
// callback is being executed outside a matching dispatch.
func ListenerInput[E event.EntityEvent](w *world.World) (*event.Envelope[E], bool) {
	v, ok := w.Input()
	if !ok {
		return nil, false
	}
	env, ok := v.(*event.Envelope[E])
	return env, ok
}
