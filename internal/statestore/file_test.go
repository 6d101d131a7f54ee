package statestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/logger"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "write-state.json")
	store := NewFileStore(path, logger.NewNop())

	state := map[string]string{
		"treasury": "2026-08-23T10:00:00Z",
		"feeds":    "2026-08-23T10:05:00Z",
	}
	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "never-written.json"), logger.NewNop())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "write-state.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0644))

	store := NewFileStore(path, logger.NewNop())
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "write-state.json")
	store := NewFileStore(path, logger.NewNop())

	require.NoError(t, store.Save(map[string]string{"ccip": "2026-08-23T10:00:00Z"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "2026-08-23T10:00:00Z", loaded["ccip"])
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "write-state.json")
	store := NewFileStore(path, logger.NewNop())

	require.NoError(t, store.Save(map[string]string{"morpho": "2026-08-23T10:00:00Z"}))
	require.NoError(t, store.Save(map[string]string{"morpho": "2026-08-23T10:15:00Z"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "save must leave only the state file behind")
	assert.Equal(t, "write-state.json", entries[0].Name())
}

func TestFileStoreSaveReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "write-state.json")
	store := NewFileStore(path, logger.NewNop())

	require.NoError(t, store.Save(map[string]string{
		"treasury": "2026-08-23T10:00:00Z",
		"curve":    "2026-08-23T10:00:00Z",
	}))
	require.NoError(t, store.Save(map[string]string{
		"treasury": "2026-08-23T10:15:00Z",
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"treasury": "2026-08-23T10:15:00Z"}, loaded)
}

func TestFileStoreLoadUnreadablePathIsTyped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not bind for root")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "write-state.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0000))

	store := NewFileStore(path, logger.NewNop())
	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStateStore))
}
