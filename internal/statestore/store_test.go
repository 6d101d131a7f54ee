package statestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	older := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 23, 11, 0, 0, 0, time.UTC)

	t.Run("records first publish", func(t *testing.T) {
		state := map[string]string{}
		assert.True(t, Advance(state, "treasury", older))
		assert.Equal(t, "2026-08-23T10:00:00Z", state["treasury"])
	})

	t.Run("moves forward", func(t *testing.T) {
		state := map[string]string{"treasury": "2026-08-23T10:00:00Z"}
		assert.True(t, Advance(state, "treasury", newer))
		assert.Equal(t, "2026-08-23T11:00:00Z", state["treasury"])
	})

	t.Run("never moves backward", func(t *testing.T) {
		state := map[string]string{"treasury": "2026-08-23T11:00:00Z"}
		assert.False(t, Advance(state, "treasury", older))
		assert.Equal(t, "2026-08-23T11:00:00Z", state["treasury"])
	})

	t.Run("same instant is a no-op", func(t *testing.T) {
		state := map[string]string{"treasury": "2026-08-23T10:00:00Z"}
		assert.False(t, Advance(state, "treasury", older))
	})

	t.Run("replaces an unparseable entry", func(t *testing.T) {
		state := map[string]string{"treasury": "garbage"}
		assert.True(t, Advance(state, "treasury", older))
		assert.Equal(t, "2026-08-23T10:00:00Z", state["treasury"])
	})

	t.Run("keys are independent", func(t *testing.T) {
		state := map[string]string{"treasury": "2026-08-23T11:00:00Z"}
		assert.True(t, Advance(state, "feeds", older))
		assert.Equal(t, "2026-08-23T11:00:00Z", state["treasury"])
		assert.Equal(t, "2026-08-23T10:00:00Z", state["feeds"])
	})
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state)

	state["feeds"] = "2026-08-23T10:00:00Z"
	require.NoError(t, store.Save(state))

	// Mutating the saved map must not leak into the store.
	state["feeds"] = "mutated"

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"feeds": "2026-08-23T10:00:00Z"}, loaded)
}
