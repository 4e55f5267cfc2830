package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverine/ripple/internal/callback"
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// Dispatcher is the bubbling driver. It owns the listener registry, the
// logical clock, and the pending-dispatch queue, and walks the world's
// entity hierarchy to deliver events.
//
// Thread-safety model:
//   - On/Off/Lookup: safe from any goroutine
//   - Dispatch: safe from any goroutine; one pass runs entirely on the
//     calling goroutine, invocation windows serialize on the world's
//     input lock, and shared cells serialize across passes
//   - Enqueue: safe from any goroutine
//   - Run: must be called from exactly one goroutine
type Dispatcher struct {
	world    *world.World
	registry *Registry
	clock    *Clock
	tokens   TokenGenerator
	maxDepth int
	queue    *dispatchQueue
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMaxDepth sets the bubble depth quota per pass.
//
// Default: 64 entities (DefaultMaxDepth).
// Use WithMaxDepth(2) in tests that exercise quota enforcement.
func WithMaxDepth(maxDepth int) Option {
	return func(d *Dispatcher) {
		d.maxDepth = maxDepth
	}
}

// WithClock replaces the dispatcher's logical clock. Used to resume seq
// stamping above an existing journal's high-water mark.
func WithClock(clock *Clock) Option {
	return func(d *Dispatcher) {
		d.clock = clock
	}
}

// New creates a Dispatcher over w. Tokens come from gen; pass
// UUIDv7Generator{} in production and a FixedGenerator in tests.
func New(w *world.World, gen TokenGenerator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		world:    w,
		registry: NewRegistry(),
		clock:    NewClock(),
		tokens:   gen,
		maxDepth: DefaultMaxDepth,
		queue:    newDispatchQueue(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// On registers a cell to handle name at entity. The same cell may be
// registered at any number of sites.
func (d *Dispatcher) On(name string, entity event.EntityID, cell *callback.Cell) {
	d.registry.On(name, entity, cell)
}

// Off removes the registration at (name, entity).
func (d *Dispatcher) Off(name string, entity event.EntityID) {
	d.registry.Off(name, entity)
}

// Lookup returns the cell registered at (name, entity).
func (d *Dispatcher) Lookup(name string, entity event.EntityID) (*callback.Cell, bool) {
	return d.registry.Lookup(name, entity)
}

// World returns the world the dispatcher drives.
func (d *Dispatcher) World() *world.World {
	return d.world
}

// Clock returns the dispatcher's logical clock.
func (d *Dispatcher) Clock() *Clock {
	return d.clock
}

// NewToken generates a dispatch token for an external pass.
// Thread-safe: delegates to the token generator.
func (d *Dispatcher) NewToken() string {
	return d.tokens.Generate()
}

// Dispatch bubbles one event instance synchronously and returns its
// Result. Errors from callbacks, the journal, and the driver's own guards
// propagate to the caller; deliveries made before the failure stand and
// are reflected in the returned Result.
func Dispatch[E event.EntityEvent](ctx context.Context, d *Dispatcher, name string, data *E) (*Result, error) {
	return bubble(ctx, d, d.tokens.Generate(), name, data)
}

// bubble walks the parent chain from the event's target, delivering to
// each registered listener until the chain ends, a callback stops the
// pass, a guard trips, or an error propagates.
func bubble[E event.EntityEvent](ctx context.Context, d *Dispatcher, token, name string, data *E) (*Result, error) {
	target := (*data).Target()
	res := &Result{Token: token, Event: name, Target: target}

	exists, err := d.world.Exists(ctx, target)
	if err != nil {
		return res, fmt.Errorf("check target of %q: %w", name, err)
	}
	if !exists {
		return res, NewMissingEntityError(token, name, target)
	}

	visited := NewVisitedSet()
	depth := NewDepthGuard(d.maxDepth)
	current := target

	slog.Debug("dispatch started",
		"token", token,
		"event", name,
		"target", int64(target),
	)

	for {
		if visited.Seen(current) {
			return res, NewCycleError(token, name, current)
		}
		visited.Record(current)

		if err := depth.Check(token); err != nil {
			slog.Error("bubble depth quota exceeded",
				"token", token,
				"event", name,
				"entity", int64(current),
				"visited", depth.Current(),
				"limit", depth.MaxDepth(),
			)
			return res, err
		}

		stopped := false
		if cell, ok := d.registry.Lookup(name, current); ok {
			delivery, err := deliver(ctx, d, cell, token, name, current, data)
			if err != nil {
				return res, err
			}
			res.Deliveries = append(res.Deliveries, delivery)
			stopped = delivery.Stopped
		}

		if stopped {
			res.Stopped = true
			res.StoppedAt = current
			slog.Debug("propagation stopped",
				"token", token,
				"event", name,
				"listener", int64(current),
			)
			break
		}

		parent, ok, err := d.world.Parent(ctx, current)
		if err != nil {
			return res, fmt.Errorf("resolve parent of entity %d: %w", current, err)
		}
		if !ok {
			break
		}
		current = parent
	}

	slog.Info("dispatch complete",
		"token", token,
		"event", name,
		"target", int64(target),
		"delivered", res.Delivered(),
		"stopped", res.Stopped,
	)

	return res, nil
}

// deliver invokes one listener's cell: publish a fresh envelope, execute,
// take the envelope back, journal the delivery. The publish-execute-take
// window runs under the world's input lock so concurrent passes on one
// world cannot clobber each other's envelope.
func deliver[E event.EntityEvent](ctx context.Context, d *Dispatcher, cell *callback.Cell, token, name string, listener event.EntityID, data *E) (world.Delivery, error) {
	env := event.NewEnvelope(listener, data)

	execErr := d.world.WithInput(env, func() error {
		return cell.Execute(ctx, d.world)
	})
	if execErr != nil {
		return world.Delivery{}, fmt.Errorf("execute listener %d for %q: %w", listener, name, execErr)
	}

	seq := d.clock.Next()
	target := (*data).Target()

	id, err := event.DeliveryID(token, name, listener, target, seq)
	if err != nil {
		return world.Delivery{}, fmt.Errorf("delivery id: %w", err)
	}

	payload, err := event.Snapshot(data)
	if err != nil {
		return world.Delivery{}, fmt.Errorf("delivery payload: %w", err)
	}

	delivery := world.Delivery{
		ID:       id,
		Token:    token,
		Seq:      seq,
		Event:    name,
		Target:   target,
		Listener: listener,
		Stopped:  !env.ShouldPropagate(),
		Payload:  payload,
	}

	if err := d.world.WriteDelivery(ctx, delivery); err != nil {
		return world.Delivery{}, fmt.Errorf("journal delivery: %w", err)
	}

	slog.Debug("event delivered",
		"token", token,
		"event", name,
		"listener", int64(listener),
		"seq", seq,
		"stopped", delivery.Stopped,
	)

	return delivery, nil
}
