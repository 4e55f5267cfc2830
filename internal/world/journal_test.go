package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverine/ripple/internal/event"
)

func journalDelivery(token string, seq int64, name string, listener event.EntityID) Delivery {
	return Delivery{
		ID:       event.MustDeliveryID(token, name, listener, 1, seq),
		Token:    token,
		Seq:      seq,
		Event:    name,
		Target:   1,
		Listener: listener,
		Payload:  `{"fields":{}}`,
	}
}

func TestWriteDelivery_AndReadTrace(t *testing.T) {
	w := openTestWorld(t)
	ctx := context.Background()

	d := journalDelivery("pass-1", 1, "click", 2)
	d.Stopped = true
	require.NoError(t, w.WriteDelivery(ctx, d))

	trace, err := w.ReadTrace(ctx, "pass-1")
	require.NoError(t, err)
	require.Len(t, trace, 1)
	assert.Equal(t, d, trace[0])
}

func TestWriteDelivery_Idempotent(t *testing.T) {
	w := openTestWorld(t)
	ctx := context.Background()

	d := journalDelivery("pass-1", 1, "click", 2)
	require.NoError(t, w.WriteDelivery(ctx, d))
	require.NoError(t, w.WriteDelivery(ctx, d), "same content-addressed ID inserts nothing")

	n, err := w.DeliveryCount(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReadTrace_OrderedBySeq(t *testing.T) {
	w := openTestWorld(t)
	ctx := context.Background()

	// Insert out of order; trace reads come back by seq.
	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-1", 3, "click", 4)))
	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-1", 1, "click", 2)))
	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-1", 2, "click", 3)))

	trace, err := w.ReadTrace(ctx, "pass-1")
	require.NoError(t, err)
	require.Len(t, trace, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{trace[0].Seq, trace[1].Seq, trace[2].Seq})
}

func TestReadTrace_FiltersByToken(t *testing.T) {
	w := openTestWorld(t)
	ctx := context.Background()

	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-1", 1, "click", 2)))
	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-2", 2, "click", 2)))

	trace, err := w.ReadTrace(ctx, "pass-1")
	require.NoError(t, err)
	require.Len(t, trace, 1)
	assert.Equal(t, "pass-1", trace[0].Token)
}

func TestReadTrace_UnknownTokenEmptyNotNil(t *testing.T) {
	w := openTestWorld(t)

	trace, err := w.ReadTrace(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, trace)
	assert.Empty(t, trace)
}

func TestDeliveryCount_ByEvent(t *testing.T) {
	w := openTestWorld(t)
	ctx := context.Background()

	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-1", 1, "click", 2)))
	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-1", 2, "click", 3)))
	require.NoError(t, w.WriteDelivery(ctx, journalDelivery("pass-2", 3, "hover", 2)))

	n, err := w.DeliveryCount(ctx, "click")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.DeliveryCount(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
