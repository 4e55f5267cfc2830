package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverine/ripple/internal/callback"
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/testutil"
	"github.com/riverine/ripple/internal/world"
)

// clickEvent is the payload used throughout the driver tests.
type clickEvent struct {
	target event.EntityID
	Count  int    `json:"count"`
	Label  string `json:"label,omitempty"`
}

func (e clickEvent) Target() event.EntityID { return e.target }

// counterCell bumps the payload counter and records the visit under key.
func counterCell(key string) *callback.Cell {
	return callback.New(callback.Funcs{
		Body: func(ctx context.Context, w *world.World) error {
			env, ok := ListenerInput[clickEvent](w)
			if !ok {
				return errors.New("no envelope published")
			}
			env.Data().Count++
			w.Queue(world.SetState(env.Listener(), key, "visited"))
			return nil
		},
	})
}

// stopperCell ends the pass at its listener.
func stopperCell() *callback.Cell {
	return callback.New(callback.Funcs{
		Body: func(ctx context.Context, w *world.World) error {
			env, ok := ListenerInput[clickEvent](w)
			if !ok {
				return errors.New("no envelope published")
			}
			env.StopPropagation()
			return nil
		},
	})
}

func newTestDispatcher(t *testing.T, w *world.World, tokens ...string) *Dispatcher {
	t.Helper()
	if len(tokens) == 0 {
		tokens = []string{"pass-1"}
	}
	return New(w, NewFixedGenerator(tokens...))
}

func TestDispatch_BubblesToRoot(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "branch", "leaf")
	root, branch, leaf := ids[0], ids[1], ids[2]
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("click", leaf, counterCell("hit"))
	d.On("click", branch, counterCell("hit"))
	d.On("click", root, counterCell("hit"))

	data := clickEvent{target: leaf}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	assert.Equal(t, "pass-1", res.Token)
	assert.Equal(t, 3, res.Delivered())
	assert.False(t, res.Stopped)
	assert.Equal(t, 3, data.Count, "every listener saw and mutated the one payload")

	// Delivery order is leaf upward, with strictly increasing seqs.
	listeners := []event.EntityID{}
	var lastSeq int64
	for _, del := range res.Deliveries {
		listeners = append(listeners, del.Listener)
		assert.Greater(t, del.Seq, lastSeq)
		lastSeq = del.Seq
		assert.Equal(t, leaf, del.Target, "target never changes while bubbling")
	}
	assert.Equal(t, []event.EntityID{leaf, branch, root}, listeners)
}

func TestDispatch_ListenerGapsAreSkipped(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "branch", "leaf")
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("click", ids[0], counterCell("hit")) // root only

	data := clickEvent{target: ids[2]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	require.Equal(t, 1, res.Delivered())
	assert.Equal(t, ids[0], res.Deliveries[0].Listener)
}

func TestDispatch_TargetListensToo(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "solo")
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("click", ids[0], counterCell("hit"))

	data := clickEvent{target: ids[0]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered())
}

func TestDispatch_EventNamesAreIndependent(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "solo")
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("hover", ids[0], counterCell("hit"))

	data := clickEvent{target: ids[0]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)
	assert.Zero(t, res.Delivered(), "a click must not reach a hover listener")
}

func TestDispatch_StopPropagation(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "branch", "leaf")
	root, branch, leaf := ids[0], ids[1], ids[2]
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("click", leaf, counterCell("hit"))
	d.On("click", branch, stopperCell())
	d.On("click", root, counterCell("hit"))

	data := clickEvent{target: leaf}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Delivered())
	assert.True(t, res.Stopped)
	assert.Equal(t, branch, res.StoppedAt)

	// The stopping delivery is journaled as stopped; earlier ones are not.
	assert.False(t, res.Deliveries[0].Stopped)
	assert.True(t, res.Deliveries[1].Stopped)

	// Root never ran.
	_, ok, err := w.ReadState(ctx, root, "hit")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDispatch_PayloadMutationVisibleUpward(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "leaf")
	root, leaf := ids[0], ids[1]
	ctx := context.Background()

	tagger := callback.New(callback.Funcs{
		Body: func(ctx context.Context, w *world.World) error {
			env, _ := ListenerInput[clickEvent](w)
			env.Data().Label = "tagged"
			return nil
		},
	})

	var seen string
	observer := callback.New(callback.Funcs{
		Body: func(ctx context.Context, w *world.World) error {
			env, _ := ListenerInput[clickEvent](w)
			seen = env.Data().Label
			return nil
		},
	})

	d := newTestDispatcher(t, w)
	d.On("click", leaf, tagger)
	d.On("click", root, observer)

	data := clickEvent{target: leaf}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	assert.Equal(t, "tagged", seen, "ancestor observes the leaf's mutation")

	// Snapshots are taken after each delivery, so both journal rows carry
	// the mutated payload.
	require.Equal(t, 2, res.Delivered())
	assert.Contains(t, res.Deliveries[0].Payload, `"label":"tagged"`)
	assert.Contains(t, res.Deliveries[1].Payload, `"label":"tagged"`)
}

func TestDispatch_MissingTarget(t *testing.T) {
	w := testutil.OpenWorld(t)
	ctx := context.Background()

	d := newTestDispatcher(t, w)

	data := clickEvent{target: 999}
	res, err := Dispatch(ctx, d, "click", &data)
	require.Error(t, err)
	assert.True(t, IsMissingEntityError(err))
	assert.Zero(t, res.Delivered())

	n, err := w.DeliveryCount(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n, "nothing journaled for a rejected pass")
}

func TestDispatch_CycleDetected(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "a", "b")
	a, b := ids[0], ids[1]
	ctx := context.Background()

	// Re-parenting does not validate, so a cycle a <-> b is expressible.
	require.NoError(t, w.SetParent(ctx, a, b))

	d := newTestDispatcher(t, w)
	d.On("click", b, counterCell("hit"))

	data := clickEvent{target: b}
	res, err := Dispatch(ctx, d, "click", &data)
	require.Error(t, err)
	assert.True(t, IsCycleError(err))

	// Deliveries made before the cycle tripped stand.
	assert.Equal(t, 1, res.Delivered())
	n, err := w.DeliveryCount(ctx, "click")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatch_DepthQuota(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "a", "b", "c")
	ctx := context.Background()

	d := New(w, NewFixedGenerator("pass-1"), WithMaxDepth(2))

	data := clickEvent{target: ids[2]}
	_, err := Dispatch(ctx, d, "click", &data)
	require.Error(t, err)
	assert.True(t, IsDepthExceededError(err))
}

func TestDispatch_CallbackErrorPropagates(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "leaf")
	ctx := context.Background()

	boom := errors.New("boom")
	failing := callback.New(callback.Funcs{
		Body: func(ctx context.Context, w *world.World) error { return boom },
	})

	d := newTestDispatcher(t, w)
	d.On("click", ids[1], counterCell("hit"))
	d.On("click", ids[0], failing)

	data := clickEvent{target: ids[1]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The leaf delivery stands; the failed one was never journaled.
	assert.Equal(t, 1, res.Delivered())
	n, err := w.DeliveryCount(ctx, "click")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDispatch_EnvelopeNeverLeaks(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "solo")
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("click", ids[0], counterCell("hit"))

	data := clickEvent{target: ids[0]}
	_, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	_, ok := w.Input()
	assert.False(t, ok, "the envelope is taken back after every delivery")
}

func TestDispatch_SharedCellInitializesOnceAcrossSites(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "leaf")
	ctx := context.Background()

	inits := 0
	shared := callback.New(callback.Funcs{
		Init: func(ctx context.Context, w *world.World) error {
			inits++
			return nil
		},
	})

	d := newTestDispatcher(t, w)
	d.On("click", ids[0], shared)
	d.On("click", ids[1], shared)

	data := clickEvent{target: ids[1]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Delivered())
	assert.Equal(t, 1, inits, "both sites share one lifecycle")
}

func TestDispatch_ConcurrentPassesKeepEnvelopesApart(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "leaf")
	ctx := context.Background()

	var mu sync.Mutex
	inits, runs := 0, 0
	shared := callback.New(callback.Funcs{
		Init: func(ctx context.Context, w *world.World) error {
			mu.Lock()
			inits++
			mu.Unlock()
			return nil
		},
		Body: func(ctx context.Context, w *world.World) error {
			// Give a racing pass a window to publish its own envelope
			// before this one reads back what it expects to see.
			time.Sleep(200 * time.Microsecond)
			env, ok := ListenerInput[clickEvent](w)
			if !ok {
				return errors.New("no envelope published")
			}
			mu.Lock()
			runs++
			mu.Unlock()
			env.Data().Count++
			return nil
		},
	})

	d := New(w, testutil.NewStaticTokenGenerator(""))
	d.On("click", ids[0], shared)
	d.On("click", ids[1], shared)

	const rounds = 20
	for round := 0; round < rounds; round++ {
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				data := clickEvent{target: ids[1]}
				res, err := Dispatch(ctx, d, "click", &data)
				if err == nil && res.Delivered() != 2 {
					err = errors.New("pass missed a listener")
				}
				errs[i] = err
			}(i)
		}
		wg.Wait()
		require.NoError(t, errs[0], "round %d", round)
		require.NoError(t, errs[1], "round %d", round)
	}

	assert.Equal(t, 1, inits, "the shared cell initializes once across all passes")
	assert.Equal(t, rounds*2*2, runs, "every delivery of every pass ran")
}

func TestDispatch_JournalMatchesResult(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "root", "leaf")
	ctx := context.Background()

	d := newTestDispatcher(t, w)
	d.On("click", ids[0], counterCell("hit"))
	d.On("click", ids[1], counterCell("hit"))

	data := clickEvent{target: ids[1]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)

	trace, err := w.ReadTrace(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Deliveries, trace)
}

func TestDispatch_Off(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "solo")
	ctx := context.Background()

	d := newTestDispatcher(t, w, "pass-1", "pass-2")
	d.On("click", ids[0], counterCell("hit"))
	d.Off("click", ids[0])

	data := clickEvent{target: ids[0]}
	res, err := Dispatch(ctx, d, "click", &data)
	require.NoError(t, err)
	assert.Zero(t, res.Delivered())
}
