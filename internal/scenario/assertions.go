package scenario

import (
	"context"
	"fmt"
)

// Check evaluates every assertion of s against a finished run.
// All assertions are evaluated; the returned slice holds one error per
// failed assertion and is empty on success.
func Check(ctx context.Context, s *Scenario, rr *RunResult) []error {
	var failures []error

	for i, a := range s.Assertions {
		if err := checkOne(ctx, a, rr); err != nil {
			failures = append(failures, fmt.Errorf("assertion %d (%s): %w", i+1, a.Type, err))
		}
	}

	return failures
}

func checkOne(ctx context.Context, a Assertion, rr *RunResult) error {
	switch a.Type {
	case "delivered_count":
		n, err := rr.World.DeliveryCount(ctx, a.Event)
		if err != nil {
			return err
		}
		if n != a.Count {
			return fmt.Errorf("event %q delivered %d times, want %d", a.Event, n, a.Count)
		}
		return nil

	case "state":
		id, ok := rr.EntityID(a.Entity)
		if !ok {
			return fmt.Errorf("unknown entity %q", a.Entity)
		}
		v, ok, err := rr.World.ReadState(ctx, id, a.Key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("entity %q has no state %q", a.Entity, a.Key)
		}
		if v != a.Value {
			return fmt.Errorf("entity %q state %q = %q, want %q", a.Entity, a.Key, v, a.Value)
		}
		return nil

	case "stopped_at":
		id, ok := rr.EntityID(a.Entity)
		if !ok {
			return fmt.Errorf("unknown entity %q", a.Entity)
		}
		for _, res := range rr.Results {
			if res.Event != a.Event {
				continue
			}
			if !res.Stopped {
				return fmt.Errorf("pass for %q was not stopped", a.Event)
			}
			if res.StoppedAt != id {
				return fmt.Errorf("pass for %q stopped at entity %d, want %q (%d)", a.Event, res.StoppedAt, a.Entity, id)
			}
			return nil
		}
		return fmt.Errorf("no pass dispatched event %q", a.Event)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}
