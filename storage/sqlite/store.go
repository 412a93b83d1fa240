package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
)

//go:embed schema.sql
var schema string

// Store implements storage.ChunkRepository on SQLite.
type Store struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
	logger *slog.Logger
}

var _ storage.ChunkRepository = (*Store)(nil)

// NewRepository opens or creates the SQLite database file at path.
func NewRepository(path string) (storage.ChunkRepository, error) {
	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens or creates the SQLite database file at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger := slog.Default().With("component", "sqlite")
	logger.Debug("opened database", "path", path)

	return &Store{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) check(ctx context.Context) error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	return ctx.Err()
}

// FindByContent returns the record whose content equals content exactly.
func (s *Store) FindByContent(ctx context.Context, content string) (*core.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE content = ? ORDER BY id LIMIT 1`, content)
	return scanOne(row)
}

// AddRecords inserts records in a single transaction.
func (s *Store) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (essay_title, essay_url, essay_date, essay_authors, content, content_tokens, embedding, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		if record.InsertedAt.IsZero() {
			record.InsertedAt = time.Now().UTC()
		}

		res, err := stmt.ExecContext(ctx,
			record.EssayTitle, record.EssayURL, record.EssayDate, record.EssayAuthors,
			record.Content, record.ContentTokens, float32ToBytes(record.Embedding),
			record.InsertedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return nil, fmt.Errorf("inserting chunk: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading chunk id: %w", err)
		}
		record.Id = core.ID(id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing chunks: %w", err)
	}

	s.logger.Debug("added records", "count", len(records))
	return records, nil
}

// GetRecord retrieves a single record by ID.
func (s *Store) GetRecord(ctx context.Context, id core.ID) (*core.Record, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, int64(id))
	return scanOne(row)
}

// CountRecords returns the number of stored records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// FindSimilar ranks every record with an embedding by cosine similarity.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE length(embedding) > 0`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []*core.SearchResult
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		similarity := storage.CosineSimilarity(vector, record.Embedding)
		if similarity >= minSimilarity {
			results = append(results, &core.SearchResult{Record: record, Score: similarity})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning chunks: %w", err)
	}

	return storage.RankResults(results, limit), nil
}

const selectColumns = `
	SELECT id, essay_title, essay_url, essay_date, essay_authors, content, content_tokens, embedding, inserted_at
	FROM chunks`

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (*core.Record, error) {
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading chunk: %w", err)
	}
	return record, nil
}

func scanRecord(row scanner) (*core.Record, error) {
	var (
		record    core.Record
		id        int64
		embedding []byte
		inserted  string
	)
	err := row.Scan(&id, &record.EssayTitle, &record.EssayURL, &record.EssayDate, &record.EssayAuthors,
		&record.Content, &record.ContentTokens, &embedding, &inserted)
	if err != nil {
		return nil, err
	}

	record.Id = core.ID(id)
	record.Embedding = bytesToFloat32(embedding)
	if record.InsertedAt, err = time.Parse(time.RFC3339Nano, inserted); err != nil {
		return nil, fmt.Errorf("%w: inserted_at %q: %w", storage.ErrSerializationFailed, inserted, err)
	}
	return &record, nil
}

// float32ToBytes converts a float32 slice to a byte slice (little-endian).
func float32ToBytes(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32 converts a byte slice back to float32 slice (little-endian).
func bytesToFloat32(buf []byte) []float32 {
	if len(buf) == 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
