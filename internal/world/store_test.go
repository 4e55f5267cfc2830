package world

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverine/ripple/internal/event"
)

// openTestWorld opens a world on a temp file and closes it with the test.
func openTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpen_CreatesDatabase(t *testing.T) {
	w := openTestWorld(t)
	assert.NotNil(t, w.DB())
}

func TestOpen_InMemory(t *testing.T) {
	w, err := Open(":memory:")
	require.NoError(t, err)
	defer w.Close()

	id, err := w.Spawn(context.Background(), "root", event.NoEntity)
	require.NoError(t, err)
	assert.NotEqual(t, event.NoEntity, id)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")

	w1, err := Open(path)
	require.NoError(t, err)
	id, err := w1.Spawn(context.Background(), "root", event.NoEntity)
	require.NoError(t, err)
	require.NoError(t, w1.Close())

	// Reopening must not wipe existing data.
	w2, err := Open(path)
	require.NoError(t, err)
	defer w2.Close()

	ok, err := w2.Exists(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_Pragmas(t *testing.T) {
	w := openTestWorld(t)

	assert.NoError(t, w.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, w.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, w.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_SchemaVersion(t *testing.T) {
	w := openTestWorld(t)

	var version int
	require.NoError(t, w.DB().QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestClose_NilSafe(t *testing.T) {
	w := &World{}
	assert.NoError(t, w.Close())
}
