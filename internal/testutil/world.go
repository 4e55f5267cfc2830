package testutil

import (
	"context"
	"testing"

	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/world"
)

// OpenWorld opens a world on a temp file and closes it with the test.
func OpenWorld(t testing.TB) *world.World {
	t.Helper()
	w, err := world.Open(t.TempDir() + "/world.db")
	if err != nil {
		t.Fatalf("open world: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

// SpawnChain spawns the named entities as a parent chain: the first name
// becomes the root, each following name a child of the previous one.
// Returns IDs in the same order as names.
func SpawnChain(t testing.TB, w *world.World, names ...string) []event.EntityID {
	t.Helper()
	ctx := context.Background()

	ids := make([]event.EntityID, len(names))
	parent := event.NoEntity
	for i, name := range names {
		id, err := w.Spawn(ctx, name, parent)
		if err != nil {
			t.Fatalf("spawn %s: %v", name, err)
		}
		ids[i] = id
		parent = id
	}
	return ids
}
