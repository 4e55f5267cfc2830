package callback

import (
	"context"

	"github.com/riverine/ripple/internal/world"
)

// Callback is an opaque, stateful, re-invocable unit of work.
//
// Initialize is called exactly once, on the first execution, before any
// run step. It is where the callback wires up whatever world state it
// needs to read or write. Run may then be called any number of times;
// mutations it wants applied atomically should be queued on the world's
// command buffer, which the executing cell flushes right after Run.
//
// Callbacks are not required to be internally thread-safe: the owning
// cell serializes all calls.
type Callback interface {
	Initialize(ctx context.Context, w *world.World) error
	Run(ctx context.Context, w *world.World) error
}

// Funcs adapts explicit functions to a Callback. Nil fields are no-ops,
// so run-only callbacks can leave Init unset.
type Funcs struct {
	Init func(ctx context.Context, w *world.World) error
	Body func(ctx context.Context, w *world.World) error
}

// Initialize implements Callback.
func (f Funcs) Initialize(ctx context.Context, w *world.World) error {
	if f.Init == nil {
		return nil
	}
	return f.Init(ctx, w)
}

// Run implements Callback.
func (f Funcs) Run(ctx context.Context, w *world.World) error {
	if f.Body == nil {
		return nil
	}
	return f.Body(ctx, w)
}
