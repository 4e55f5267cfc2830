package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverine/ripple/internal/callback"
	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/testutil"
	"github.com/riverine/ripple/internal/world"
)

func TestDispatchQueue_FIFO(t *testing.T) {
	q := newDispatchQueue()

	q.Enqueue(pendingDispatch{token: "a"})
	q.Enqueue(pendingDispatch{token: "b"})
	q.Enqueue(pendingDispatch{token: "c"})
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		p, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, p.token)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestDispatchQueue_EnqueueAfterClose(t *testing.T) {
	q := newDispatchQueue()
	q.Close()

	assert.False(t, q.Enqueue(pendingDispatch{token: "a"}))
	assert.Zero(t, q.Len())

	// Closing twice is safe.
	q.Close()
}

func TestDispatchQueue_SignalCoalesces(t *testing.T) {
	q := newDispatchQueue()

	q.Enqueue(pendingDispatch{token: "a"})
	q.Enqueue(pendingDispatch{token: "b"})

	// Only one buffered signal regardless of enqueue count.
	select {
	case <-q.Wait():
	default:
		t.Fatal("expected a pending signal")
	}
	select {
	case <-q.Wait():
		t.Fatal("signal should have been coalesced")
	default:
	}
}

func TestEnqueue_AssignsTokenUpFront(t *testing.T) {
	w := testutil.OpenWorld(t)
	d := New(w, NewFixedGenerator("pass-1", "pass-2"))

	data := clickEvent{target: 1}
	token, ok := Enqueue(d, "click", &data)
	require.True(t, ok)
	assert.Equal(t, "pass-1", token)
	assert.Equal(t, 1, d.QueueLen())
}

func TestEnqueue_AfterStop(t *testing.T) {
	w := testutil.OpenWorld(t)
	d := New(w, NewFixedGenerator("pass-1"))
	d.Stop()

	data := clickEvent{target: 1}
	_, ok := Enqueue(d, "click", &data)
	assert.False(t, ok)
}

func TestRun_DrainsInOrderThenReturns(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "solo")
	ctx := context.Background()

	var order []string
	recording := func(label string) *callback.Cell {
		return callback.New(callback.Funcs{
			Body: func(ctx context.Context, w *world.World) error {
				order = append(order, label)
				return nil
			},
		})
	}

	d := New(w, NewFixedGenerator("pass-1", "pass-2"))
	d.On("first", ids[0], recording("first"))
	d.On("second", ids[0], recording("second"))

	a := clickEvent{target: ids[0]}
	b := clickEvent{target: ids[0]}
	t1, ok := Enqueue(d, "first", &a)
	require.True(t, ok)
	t2, ok := Enqueue(d, "second", &b)
	require.True(t, ok)

	d.Stop()
	require.NoError(t, d.Run(ctx), "a closed, drained queue ends the loop cleanly")

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Zero(t, d.QueueLen())

	// Both passes journaled under their pre-assigned tokens.
	for _, token := range []string{t1, t2} {
		trace, err := w.ReadTrace(ctx, token)
		require.NoError(t, err)
		assert.Len(t, trace, 1)
	}
}

func TestRun_LogsAndContinuesOnFailure(t *testing.T) {
	w := testutil.OpenWorld(t)
	ids := testutil.SpawnChain(t, w, "solo")
	ctx := context.Background()

	d := New(w, NewFixedGenerator("pass-1", "pass-2"))
	d.On("click", ids[0], counterCell("hit"))

	// First pass targets a missing entity and fails; the loop must still
	// process the second.
	bad := clickEvent{target: event.EntityID(999)}
	good := clickEvent{target: ids[0]}
	_, ok := Enqueue(d, "click", &bad)
	require.True(t, ok)
	goodToken, ok := Enqueue(d, "click", &good)
	require.True(t, ok)

	d.Stop()
	require.NoError(t, d.Run(ctx))

	trace, err := w.ReadTrace(ctx, goodToken)
	require.NoError(t, err)
	assert.Len(t, trace, 1)
}

func TestRun_ContextCancellation(t *testing.T) {
	w := testutil.OpenWorld(t)
	d := New(w, NewFixedGenerator())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
