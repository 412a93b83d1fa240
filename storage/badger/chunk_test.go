package badger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(content string) *core.Record {
	return &core.Record{
		EssayTitle:    "Sleep and memory",
		EssayURL:      "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC3/",
		EssayDate:     "2021 Feb 2",
		EssayAuthors:  "Walker M",
		Content:       content,
		ContentTokens: 5,
		Embedding:     []float32{0.1, 0.2, 0.3},
	}
}

func TestAddRecords_AssignsIDsAndTimestamps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx, testRecord("first"), testRecord("second"))
	require.NoError(t, err)
	require.Len(t, added, 2)

	assert.NotZero(t, added[0].Id)
	assert.NotZero(t, added[1].Id)
	assert.NotEqual(t, added[0].Id, added[1].Id)
	assert.False(t, added[0].InsertedAt.IsZero())
}

func TestAddRecords_KeepsInsertedAt(t *testing.T) {
	repo := newTestRepo(t)
	when := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	record := testRecord("dated")
	record.InsertedAt = when
	added, err := repo.AddRecords(context.Background(), record)
	require.NoError(t, err)

	got, err := repo.GetRecord(context.Background(), added[0].Id)
	require.NoError(t, err)
	assert.True(t, when.Equal(got.InsertedAt))
}

func TestGetRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx, testRecord("Deep sleep restores the body."))
	require.NoError(t, err)

	got, err := repo.GetRecord(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Deep sleep restores the body.", got.Content)
	assert.Equal(t, "Walker M", got.EssayAuthors)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)

	_, err = repo.GetRecord(ctx, core.ID(9999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFindByContent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx, testRecord("Sleep affects memory. "))
	require.NoError(t, err)

	t.Run("exact match", func(t *testing.T) {
		got, err := repo.FindByContent(ctx, "Sleep affects memory. ")
		require.NoError(t, err)
		assert.Equal(t, added[0].Id, got.Id)
	})

	t.Run("whitespace difference is not a match", func(t *testing.T) {
		_, err := repo.FindByContent(ctx, "Sleep affects memory.")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("case difference is not a match", func(t *testing.T) {
		_, err := repo.FindByContent(ctx, "sleep affects memory. ")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("absent", func(t *testing.T) {
		_, err := repo.FindByContent(ctx, "never stored")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestFindByContent_HashCollisionDoesNotAlias(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	repo, err := NewChunkRepository(backend)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	added, err := repo.AddRecords(ctx, testRecord("stored text"))
	require.NoError(t, err)

	// Plant an index entry for different content under the hash of the
	// stored text, simulating a collision.
	impostor := testRecord("other text")
	impostor.Id = core.ID(500)
	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeChunkRecordKey(impostor.Id), storage.MarshalRecord(impostor)); err != nil {
			return err
		}
		key := append(makePartialContentKey("stored text"), 0, 0, 0, 0, 0, 0, 0, 0)
		if err := tx.Set(key, storage.MarshalID(impostor.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	got, err := repo.FindByContent(ctx, "stored text")
	require.NoError(t, err)
	assert.Equal(t, added[0].Id, got.Id)
	assert.Equal(t, "stored text", got.Content)
}

func TestCountRecords_Repository(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddRecords(ctx, testRecord("a"), testRecord("b"), testRecord("c"))
	require.NoError(t, err)

	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRepository_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	added, err := repo.AddRecords(ctx, testRecord("durable"))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewRepository(dir)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.FindByContent(ctx, "durable")
	require.NoError(t, err)
	assert.Equal(t, added[0].Id, got.Id)

	next, err := repo.AddRecords(ctx, testRecord("after reopen"))
	require.NoError(t, err)
	assert.NotEqual(t, added[0].Id, next[0].Id)
}

func TestRepository_Closed(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	assert.NoError(t, repo.Close())

	ctx := context.Background()
	_, err = repo.FindByContent(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.AddRecords(ctx, testRecord("x"))
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.GetRecord(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestRepository_CancelledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByContent(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.AddRecords(ctx, testRecord("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAddRecords_Concurrent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]core.ID, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			added, err := repo.AddRecords(ctx, testRecord(string(rune('a'+i))))
			if assert.NoError(t, err) {
				ids[i] = added[0].Id
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[core.ID]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}

	count, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
