package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/riverine/ripple/internal/event"
)

// RunWithGolden executes a scenario and compares its full trace against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
//
// Golden files are canonical JSON, so a byte diff is a semantic diff:
// any change in delivery order, payload mutation, or stop behavior shows
// up directly.
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()

	ctx := context.Background()
	rr, err := Run(ctx, s)
	if err != nil {
		t.Fatalf("run scenario %s: %v", s.Name, err)
	}
	defer rr.World.Close()

	if failures := Check(ctx, s, rr); len(failures) > 0 {
		for _, f := range failures {
			t.Error(f)
		}
		return
	}

	snapshot, err := traceSnapshot(s, rr)
	if err != nil {
		t.Fatalf("snapshot scenario %s: %v", s.Name, err)
	}

	data, err := event.MarshalCanonical(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot %s: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)
}

// traceSnapshot reduces a run to plain maps for canonical serialization.
// Delivery IDs are omitted: they are derived hashes, and the fields they
// derive from are all present.
func traceSnapshot(s *Scenario, rr *RunResult) (map[string]any, error) {
	passes := make([]any, len(rr.Results))
	for i, res := range rr.Results {
		deliveries := make([]any, len(res.Deliveries))
		for j, d := range res.Deliveries {
			payload, err := decodePayload(d.Payload)
			if err != nil {
				return nil, fmt.Errorf("pass %d delivery %d: %w", i+1, j+1, err)
			}
			deliveries[j] = map[string]any{
				"seq":      d.Seq,
				"event":    d.Event,
				"target":   int64(d.Target),
				"listener": int64(d.Listener),
				"stopped":  d.Stopped,
				"payload":  payload,
			}
		}
		passes[i] = map[string]any{
			"token":      res.Token,
			"event":      res.Event,
			"stopped":    res.Stopped,
			"deliveries": deliveries,
		}
	}

	return map[string]any{
		"scenario": s.Name,
		"passes":   passes,
	}, nil
}

// decodePayload parses a journaled canonical JSON payload back into maps,
// preserving integers as json.Number for re-canonicalization.
func decodePayload(payload string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}
