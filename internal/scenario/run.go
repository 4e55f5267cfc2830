package scenario

import (
	"context"
	"fmt"

	"github.com/riverine/ripple/internal/callback"
	"github.com/riverine/ripple/internal/dispatch"
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// RunResult collects everything a scenario run produced. The caller owns
// the world and must Close it after inspecting.
type RunResult struct {
	World      *world.World
	Dispatcher *dispatch.Dispatcher
	Results    []*dispatch.Result

	// entityIDs maps declared names to spawned IDs for assertions.
	entityIDs map[string]event.EntityID
}

// EntityID resolves a declared entity name from the run.
func (r *RunResult) EntityID(name string) (event.EntityID, bool) {
	id, ok := r.entityIDs[name]
	return id, ok
}

// Run executes a scenario against a fresh in-memory world: spawn the
// hierarchy, register listeners, dispatch every event in order.
//
// Dispatch tokens are fixed ("pass-N" by position unless the event names
// its own), so the same scenario always journals identically.
func Run(ctx context.Context, s *Scenario) (*RunResult, error) {
	return RunOn(ctx, s, "")
}

// RunOn is Run against a world database at path; empty path means an
// in-memory world.
func RunOn(ctx context.Context, s *Scenario, path string) (*RunResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if path == "" {
		path = ":memory:"
	}
	w, err := world.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open world: %w", err)
	}

	rr, err := runOnWorld(ctx, s, w)
	if err != nil {
		w.Close()
		return nil, err
	}
	return rr, nil
}

func runOnWorld(ctx context.Context, s *Scenario, w *world.World) (*RunResult, error) {
	ids := make(map[string]event.EntityID, len(s.Entities))
	for _, e := range s.Entities {
		parent := event.NoEntity
		if e.Parent != "" {
			parent = ids[e.Parent]
		}
		id, err := w.Spawn(ctx, e.Name, parent)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", e.Name, err)
		}
		ids[e.Name] = id
	}

	tokens := make([]string, len(s.Events))
	for i, ev := range s.Events {
		if ev.Token != "" {
			tokens[i] = ev.Token
		} else {
			tokens[i] = fmt.Sprintf("pass-%d", i+1)
		}
	}

	d := dispatch.New(w, dispatch.NewFixedGenerator(tokens...))

	// Listeners sharing a cell label share one *callback.Cell, so all
	// their sites observe a single lifecycle.
	sharedCells := make(map[string]*callback.Cell)
	for _, l := range s.Listeners {
		entity := ids[l.Entity]

		var cell *callback.Cell
		if l.Cell != "" {
			if existing, ok := sharedCells[l.Cell]; ok {
				cell = existing
			}
		}
		if cell == nil {
			cb, err := buildCallback(l, entity)
			if err != nil {
				return nil, fmt.Errorf("listener on %s: %w", l.Entity, err)
			}
			cell = callback.New(cb)
			if l.Cell != "" {
				sharedCells[l.Cell] = cell
			}
		}

		d.On(l.Event, entity, cell)
	}

	rr := &RunResult{
		World:      w,
		Dispatcher: d,
		entityIDs:  ids,
	}

	for i, ev := range s.Events {
		msg := NewMessage(ids[ev.Target], ev.Fields)
		res, err := dispatch.Dispatch(ctx, d, ev.Name, &msg)
		if err != nil {
			return nil, fmt.Errorf("dispatch event %d (%s): %w", i+1, ev.Name, err)
		}
		rr.Results = append(rr.Results, res)
	}

	return rr, nil
}
