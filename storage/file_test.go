package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileArchiveStore_Save(t *testing.T) {
	dir := t.TempDir()
	store := NewFileArchiveStore(dir)

	err := store.Save(context.Background(), "./logs/1700000000.session.json", []byte(`{"ok":true}`))
	require.NoError(t, err)

	// Only the base name of the key is used.
	data, err := os.ReadFile(filepath.Join(dir, "1700000000.session.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestFileArchiveStore_Save_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	store := NewFileArchiveStore(dir)

	err := store.Save(context.Background(), "session.json", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "session.json"))
	assert.NoError(t, err)
}

func TestTestArchiveStore(t *testing.T) {
	store := NewTestArchiveStore()

	require.NoError(t, store.Save(context.Background(), "a.json", []byte("1")))
	require.NoError(t, store.Save(context.Background(), "b.json", []byte("2")))

	assert.Equal(t, []byte("1"), store.Objects["a.json"])
	assert.Equal(t, []byte("2"), store.Objects["b.json"])

	failing := NewTestArchiveStoreWithError()
	assert.Error(t, failing.Save(context.Background(), "c.json", []byte("3")))
}
