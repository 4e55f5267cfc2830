package scenario

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riverine/ripple/internal/callback"
	"github.com/riverine/ripple/internal/dispatch"
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// buildCallback constructs the built-in callback for a listener
// definition with its entity reference already resolved.
func buildCallback(def ListenerDef, entity event.EntityID) (callback.Callback, error) {
	switch def.Kind {
	case "counter":
		key := def.Key
		if key == "" {
			key = "count"
		}
		return &counter{entity: entity, key: key}, nil

	case "stopper":
		return &stopper{entity: entity, key: def.Key}, nil

	case "tagger":
		field := def.Field
		if field == "" {
			field = "tag"
		}
		return &tagger{key: def.Key, field: field, value: def.Value}, nil

	default:
		return nil, fmt.Errorf("unknown callback kind %q", def.Kind)
	}
}

// counter counts its run steps into a state key on its entity.
//
// Initialization resumes the count from any value already in the world,
// so re-running a scenario against a persistent world keeps counting
// instead of resetting. The increment is queued on the command buffer and
// lands when the cell flushes.
type counter struct {
	entity event.EntityID
	key    string
	n      int
}

func (c *counter) Initialize(ctx context.Context, w *world.World) error {
	v, ok, err := w.ReadState(ctx, c.entity, c.key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("counter state %q is not a number: %w", v, err)
	}
	c.n = n
	return nil
}

func (c *counter) Run(ctx context.Context, w *world.World) error {
	c.n++
	w.Queue(world.SetState(c.entity, c.key, strconv.Itoa(c.n)))
	return nil
}

// stopper ends the pass at its listener. When key is set it also records
// "stopped" into that state key, so assertions can see it fired.
type stopper struct {
	entity event.EntityID
	key    string
}

func (s *stopper) Initialize(ctx context.Context, w *world.World) error {
	return nil
}

func (s *stopper) Run(ctx context.Context, w *world.World) error {
	env, ok := dispatch.ListenerInput[Message](w)
	if !ok {
		return fmt.Errorf("stopper: no message envelope published")
	}
	env.StopPropagation()
	if s.key != "" {
		w.Queue(world.SetState(s.entity, s.key, "stopped"))
	}
	return nil
}

// tagger mutates the bubbling payload, writing value into the configured
// field. The mutation stays visible to ancestor listeners and to the
// driver. When key is set it also mirrors the value into the handling
// listener's state.
type tagger struct {
	key   string
	field string
	value string
}

func (t *tagger) Initialize(ctx context.Context, w *world.World) error {
	return nil
}

func (t *tagger) Run(ctx context.Context, w *world.World) error {
	env, ok := dispatch.ListenerInput[Message](w)
	if !ok {
		return fmt.Errorf("tagger: no message envelope published")
	}
	env.Data().Fields[t.field] = t.value
	if t.key != "" {
		w.Queue(world.SetState(env.Listener(), t.key, t.value))
	}
	return nil
}
