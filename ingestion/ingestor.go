package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
)

// Ingestor embeds chunks and stores them, skipping content already stored.
// Chunks are handled strictly one at a time in input order.
type Ingestor struct {
	repo     storage.ChunkRepository
	embedder ai.Embedder
	pacer    Pacer
	logger   *slog.Logger

	mu      sync.Mutex
	started bool // a chunk has been processed; later chunks are paced
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithDelay sets a fixed pause between consecutive chunks.
// Zero disables pacing. Default is DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(ing *Ingestor) error {
		if d < 0 {
			return ErrInvalidDelay
		}
		ing.pacer = FixedDelay(d)
		return nil
	}
}

// WithRateLimit paces chunks with a token bucket of perSecond and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(ing *Ingestor) error {
		limiter, err := NewRateLimit(perSecond, burst)
		if err != nil {
			return err
		}
		ing.pacer = limiter
		return nil
	}
}

// WithPacer sets a custom pacer.
func WithPacer(p Pacer) Option {
	return func(ing *Ingestor) error {
		if p == nil {
			return ErrPacerRequired
		}
		ing.pacer = p
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ing *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		ing.logger = logger.With("component", "ingestor")
		return nil
	}
}

// NewIngestor creates an Ingestor storing into repo with vectors from embedder.
func NewIngestor(repo storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Ingestor, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ing := &Ingestor{
		repo:     repo,
		embedder: embedder,
		pacer:    FixedDelay(DefaultDelay),
		logger:   slog.Default().With("component", "ingestor"),
	}

	for _, opt := range opts {
		if err := opt(ing); err != nil {
			return nil, err
		}
	}

	return ing, nil
}

// Ingest resolves every chunk and returns one Outcome per chunk in input order.
// Per-chunk failures are reported in the outcomes and never stop the run.
// The error is non-nil only if ctx is done; the outcomes resolved so far are
// returned with it.
func (ing *Ingestor) Ingest(ctx context.Context, chunks []*core.Chunk) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(chunks))
	err := ing.IngestFunc(ctx, chunks, func(o Outcome) {
		outcomes = append(outcomes, o)
	})
	return outcomes, err
}

// IngestFunc is Ingest delivering each Outcome to fn as soon as it resolves.
func (ing *Ingestor) IngestFunc(ctx context.Context, chunks []*core.Chunk, fn func(Outcome)) error {
	ing.mu.Lock()
	defer ing.mu.Unlock()

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ing.started {
			if err := ing.pacer.Wait(ctx); err != nil {
				return err
			}
		}
		ing.started = true

		fn(ing.resolve(ctx, i, chunk))
	}
	return nil
}

// resolve runs the existence check, embedding and persistence for one chunk.
func (ing *Ingestor) resolve(ctx context.Context, index int, chunk *core.Chunk) Outcome {
	outcome := Outcome{Index: index, Chunk: chunk}

	if err := core.ValidateChunk(chunk); err != nil {
		return ing.fail(outcome, err)
	}

	existing, err := ing.repo.FindByContent(ctx, chunk.Content)
	switch {
	case err == nil:
		outcome.Status = StatusSkipped
		outcome.RecordID = existing.Id
		ing.logger.Debug("chunk already stored", "index", index, "url", chunk.EssayURL, "id", existing.Id)
		return outcome
	case !errors.Is(err, storage.ErrNotFound):
		return ing.fail(outcome, fmt.Errorf("%w: %w", ErrLookupFailed, err))
	}

	vector, err := ing.embedder.EmbedText(ctx, chunk.Content)
	if err != nil {
		return ing.fail(outcome, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err))
	}
	if len(vector) == 0 {
		return ing.fail(outcome, fmt.Errorf("%w: empty vector", ErrEmbeddingFailed))
	}

	added, err := ing.repo.AddRecords(ctx, core.NewRecord(chunk, vector))
	if err != nil {
		return ing.fail(outcome, fmt.Errorf("%w: %w", ErrPersistenceFailed, err))
	}
	if len(added) == 0 {
		return ing.fail(outcome, fmt.Errorf("%w: no record returned", ErrPersistenceFailed))
	}

	chunk.Embedding = vector
	outcome.Status = StatusStored
	outcome.RecordID = added[0].Id
	ing.logger.Info("stored chunk", "index", index, "url", chunk.EssayURL,
		"tokens", chunk.ContentTokens, "id", outcome.RecordID)
	return outcome
}

func (ing *Ingestor) fail(outcome Outcome, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Err = err

	url := ""
	if outcome.Chunk != nil {
		url = outcome.Chunk.EssayURL
	}
	ing.logger.Warn("chunk failed", "index", outcome.Index, "url", url, "err", err)
	return outcome
}
