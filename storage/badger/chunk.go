package badger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend     *Backend
	idSeq       *badger.Sequence
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a ChunkRepository on an open backend.
// The caller keeps ownership of the backend.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChunkRepository{
		backend: backend,
		idSeq:   idSeq,
		logger:  backend.logger.With("repository", "chunk"),
	}, nil
}

// NewRepository opens a BadgerDB database at path and returns a repository
// that closes it on Close.
func NewRepository(path string) (storage.ChunkRepository, error) {
	repo, err := openOwnedRepository(path, false)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openOwnedRepository(path string, inMemory bool) (*ChunkRepository, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases the ID sequence, and the backend if the repository opened it.
func (r *ChunkRepository) Close() error {
	if r.backend.IsClosed() {
		return nil
	}
	err := r.idSeq.Release()
	if r.ownsBackend {
		err = errors.Join(err, r.backend.Close())
	}
	return err
}

// FindByContent returns the record whose content equals content exactly.
// The content index is keyed by hash; every candidate under the hash is
// compared against the full text.
func (r *ChunkRepository) FindByContent(ctx context.Context, content string) (*core.Record, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}

	var found *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialContentKey(content)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			record, err := r.readRecord(tx, id)
			if err != nil {
				return err
			}
			if record != nil && record.Content == content {
				found = record
				return nil
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, storage.ErrNotFound
	}
	return found, nil
}

// AddRecords stores records under fresh sequence IDs in a single transaction.
func (r *ChunkRepository) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)

			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}

			if err := tx.Set(makeChunkRecordKey(record.Id), storage.MarshalRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(makeContentKey(record.Content, record.Id), storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}

	r.logger.Debug("added records", "count", len(records))
	return records, nil
}

// GetRecord retrieves a single record by ID.
func (r *ChunkRepository) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	if err := r.check(ctx); err != nil {
		return nil, err
	}

	var record *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readRecord(tx, id)
		return err
	}, false)

	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, storage.ErrNotFound
	}
	return record, nil
}

// CountRecords returns the number of stored records.
func (r *ChunkRepository) CountRecords(ctx context.Context) (int, error) {
	return r.backend.CountRecords(ctx)
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

func (r *ChunkRepository) check(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// readRecord reads a record in tx. Returns nil, nil if it doesn't exist.
func (r *ChunkRepository) readRecord(tx *badger.Txn, id core.ID) (*core.Record, error) {
	item, err := tx.Get(makeChunkRecordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalRecord(val)
		return err
	})
	return record, err
}
