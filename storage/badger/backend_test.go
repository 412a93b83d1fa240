package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
	assert.NoError(t, backend.Close(), "second close is a no-op")
}

func TestFindSimilar_NoRecords(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	results, err := backend.FindSimilar(context.Background(), []float32{0.1, 0.2, 0.3}, 0.5, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_WithRecords(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo, err := NewChunkRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	_, err = repo.AddRecords(ctx,
		&core.Record{Content: "north", Embedding: []float32{1, 0, 0}},
		&core.Record{Content: "north-east", Embedding: []float32{1, 1, 0}},
		&core.Record{Content: "up", Embedding: []float32{0, 0, 1}},
		&core.Record{Content: "no vector"},
	)
	require.NoError(t, err)

	results, err := backend.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "north", results[0].Record.Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "north-east", results[1].Record.Content)
	assert.InDelta(t, 0.7071, results[1].Score, 1e-3)

	limited, err := backend.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCountRecords(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo, err := NewChunkRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	count, err := backend.CountRecords(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.AddRecords(ctx, &core.Record{Content: "a"}, &core.Record{Content: "b"})
	require.NoError(t, err)

	count, err = backend.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "index and sequence keys are not counted")
}

func TestBackend_ClosedOperations(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = backend.FindSimilar(context.Background(), []float32{1}, 0, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = backend.CountRecords(context.Background())
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
