package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_SeedsAttributes(t *testing.T) {
	sess := NewSession(map[string]string{"radius": "100", "latitude": "40.69"})

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "100", sess.Attributes["radius"])
	assert.Equal(t, "40.69", sess.Attributes["latitude"])
	assert.Equal(t, time.Now().Format("01/02/2006"), sess.Attributes["current_date"])
	assert.Empty(t, sess.PendingInvocationID())
}

func TestNewSession_KeepsCallerProvidedDate(t *testing.T) {
	sess := NewSession(map[string]string{"current_date": "01/15/2026"})
	assert.Equal(t, "01/15/2026", sess.Attributes["current_date"])
}

func TestNewSession_DoesNotAliasCallerMap(t *testing.T) {
	attrs := map[string]string{"radius": "100"}
	sess := NewSession(attrs)
	attrs["radius"] = "9000"
	assert.Equal(t, "100", sess.Attributes["radius"])
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore()

	a := store.Create(map[string]string{"radius": "100"})
	b := store.Create(map[string]string{"radius": "250"})
	require.NotEqual(t, a.ID, b.ID)

	got, ok := store.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	// Sessions are isolated: each has its own attributes and its own
	// pending-invocation slot.
	a.pendingInvocationID = "inv-a"
	assert.Empty(t, b.PendingInvocationID())
	assert.Equal(t, "250", b.Attributes["radius"])

	store.Remove(a.ID)
	_, ok = store.Get(a.ID)
	assert.False(t, ok)
	_, ok = store.Get(b.ID)
	assert.True(t, ok)
}

func TestSessionStore_GetUnknown(t *testing.T) {
	store := NewSessionStore()
	_, ok := store.Get("nope")
	assert.False(t, ok)
}
