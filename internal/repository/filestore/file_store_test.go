package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KretovDmitry/tinyurl/internal/errs"
	"github.com/KretovDmitry/tinyurl/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, path string) *FileStore {
	t.Helper()

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.EnsureSchema(context.Background()))
	t.Cleanup(func() { _ = fs.Close() })

	return fs
}

func TestNewFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	require.Error(t, err)
}

func TestFileStore_NotInitialized(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "urls.json"))
	require.NoError(t, err)

	_, err = fs.InsertOrGet(context.Background(), "abc123", "https://example.com/a")
	require.Error(t, err)
}

func TestFileStore_InsertOrGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "urls.json")
	fs := newStore(t, path)

	res, err := fs.InsertOrGet(ctx, "abc123", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, models.Inserted, res.Outcome)

	res, err = fs.InsertOrGet(ctx, "def456", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, models.InsertResult{Outcome: models.ExistingForURL, ID: "abc123"}, res)

	res, err = fs.InsertOrGet(ctx, "abc123", "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, models.IDConflict, res.Outcome)

	require.NoError(t, fs.Close())

	// only the inserted record reached the file
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1)
	assert.JSONEq(t, `{"id":"abc123","url":"https://example.com/a"}`, lines[0])
}

func TestFileStore_Reload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "urls.json")

	first := newStore(t, path)
	_, err := first.InsertOrGet(ctx, "abc123", "https://example.com/a")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newStore(t, path)

	url, err := second.GetByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, models.OriginalURL("https://example.com/a"), url)

	// the reloaded url keeps its id
	res, err := second.InsertOrGet(ctx, "ghi789", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, models.InsertResult{Outcome: models.ExistingForURL, ID: "abc123"}, res)

	_, err = second.GetByID(ctx, "zzzzzz")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFileStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	require.Error(t, fs.EnsureSchema(context.Background()))
}

func TestFileStore_Ping(t *testing.T) {
	fs := newStore(t, filepath.Join(t.TempDir(), "urls.json"))
	assert.NoError(t, fs.Ping(context.Background()))

	require.NoError(t, fs.Close())
	assert.ErrorIs(t, fs.Ping(context.Background()), errs.ErrDBNotConnected)
}
