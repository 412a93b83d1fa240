package storage

import (
	"context"

	"github.com/poiesic/passage/core"
)

// ChunkRepository stores embedded chunks as records and finds them again.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// FindByContent returns the record whose content equals content exactly.
	// Returns ErrNotFound if no such record exists.
	FindByContent(ctx context.Context, content string) (*core.Record, error)

	// AddRecords adds one or more records. IDs are assigned by the store
	// and InsertedAt is set if zero. Returns the records with IDs populated.
	// All records are written or none are.
	AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.Record, error)

	// CountRecords returns the number of stored records.
	CountRecords(ctx context.Context) (int, error)

	// FindSimilar finds records whose embedding has cosine similarity
	// >= minSimilarity with vector, up to limit results, highest first.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
