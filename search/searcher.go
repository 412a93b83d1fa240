package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/storage"
)

const (
	// DefaultMinSimilarity is the cosine similarity below which records are ignored.
	DefaultMinSimilarity = 0.6

	// DefaultVerbatimBoost is added to the score of records containing every query word.
	DefaultVerbatimBoost = 0.3

	// candidateFactor widens the similarity query so boosted records can move up.
	candidateFactor = 2
)

// Searcher ranks stored chunks against a natural-language query.
type Searcher struct {
	repo          storage.ChunkRepository
	embedder      ai.Embedder
	minSimilarity float32
	verbatimBoost float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "searcher")
		return nil
	}
}

// WithMinSimilarity sets the similarity threshold.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		if min < -1 || min > 1 {
			return ErrInvalidMinSimilarity
		}
		s.minSimilarity = min
		return nil
	}
}

// WithVerbatimBoost sets the score bonus for verbatim matches. Zero disables it.
// Default is DefaultVerbatimBoost.
func WithVerbatimBoost(boost float32) Option {
	return func(s *Searcher) error {
		s.verbatimBoost = boost
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repo storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		repo:          repo,
		embedder:      embedder,
		minSimilarity: DefaultMinSimilarity,
		verbatimBoost: DefaultVerbatimBoost,
		logger:        slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for chunks similar to the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor is FindSimilar reporting each stage to monitor.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}
	if maxHits <= 0 {
		return nil, fmt.Errorf("%w: maxHits must be greater than 0", ErrInvalidQuery)
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.repo.FindSimilar(ctx, embedding, s.minSimilarity, maxHits*candidateFactor)
	if err != nil {
		s.logger.Error("error querying for similar records", "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	if s.verbatimBoost != 0 {
		for _, match := range matches {
			if containsAllQueryWords(match.Record.Content, query) {
				match.Score += s.verbatimBoost
				monitor.VerbatimHit(match.Record)
			}
		}
	}

	results := storage.RankResults(matches, maxHits)
	if results == nil {
		results = []*core.SearchResult{}
	}
	monitor.Finish(results)

	s.logger.Debug("search complete", "query", query, "candidates", len(matches), "results", len(results))
	return results, nil
}
