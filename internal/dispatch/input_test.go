package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverine/ripple/internal/event"
	"github.com/riverine/ripple/internal/testutil"
)

type hoverEvent struct {
	target event.EntityID
}

func (e hoverEvent) Target() event.EntityID { return e.target }

func TestListenerInput_NoEnvelope(t *testing.T) {
	w := testutil.OpenWorld(t)

	_, ok := ListenerInput[clickEvent](w)
	assert.False(t, ok)
}

func TestListenerInput_TypedEnvelope(t *testing.T) {
	w := testutil.OpenWorld(t)

	data := clickEvent{target: 3, Count: 1}
	w.PublishInput(event.NewEnvelope(5, &data))

	env, ok := ListenerInput[clickEvent](w)
	require.True(t, ok)
	assert.Equal(t, event.EntityID(5), env.Listener())
	assert.Equal(t, 1, env.Data().Count)
}

func TestListenerInput_TypeMismatch(t *testing.T) {
	w := testutil.OpenWorld(t)

	data := hoverEvent{target: 3}
	w.PublishInput(event.NewEnvelope(5, &data))

	_, ok := ListenerInput[clickEvent](w)
	assert.False(t, ok, "an envelope of another event type must not match")
}
