package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryID_Deterministic(t *testing.T) {
	id1, err := DeliveryID("pass-1", "click", 2, 3, 7)
	require.NoError(t, err)
	id2, err := DeliveryID("pass-1", "click", 2, 3, 7)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "hex-encoded SHA-256")
}

func TestDeliveryID_SensitiveToEveryField(t *testing.T) {
	base := MustDeliveryID("pass-1", "click", 2, 3, 7)

	assert.NotEqual(t, base, MustDeliveryID("pass-2", "click", 2, 3, 7), "token")
	assert.NotEqual(t, base, MustDeliveryID("pass-1", "hover", 2, 3, 7), "event")
	assert.NotEqual(t, base, MustDeliveryID("pass-1", "click", 9, 3, 7), "listener")
	assert.NotEqual(t, base, MustDeliveryID("pass-1", "click", 2, 9, 7), "target")
	assert.NotEqual(t, base, MustDeliveryID("pass-1", "click", 2, 3, 8), "seq")
}

func TestDeliveryID_ListenerTargetNotInterchangeable(t *testing.T) {
	// Field names participate in the hash, so swapping listener and target
	// values must change the ID.
	a := MustDeliveryID("pass-1", "click", 2, 3, 7)
	b := MustDeliveryID("pass-1", "click", 3, 2, 7)
	assert.NotEqual(t, a, b)
}

func TestHashWithDomain_DomainSeparation(t *testing.T) {
	data := []byte("payload")
	a := hashWithDomain("ripple/delivery/v1", data)
	b := hashWithDomain("ripple/other/v1", data)
	assert.NotEqual(t, a, b)
}

func TestHashWithDomain_SeparatorPreventsAmbiguity(t *testing.T) {
	// "ab" + "c" and "a" + "bc" must hash differently.
	a := hashWithDomain("ab", []byte("c"))
	b := hashWithDomain("a", []byte("bc"))
	assert.NotEqual(t, a, b)
}
