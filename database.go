// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package passage chunks long-form documents and ingests them into a vector store.
package passage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/ai/openai"
	"github.com/poiesic/passage/chunking"
	"github.com/poiesic/passage/ingestion"
	"github.com/poiesic/passage/search"
	"github.com/poiesic/passage/storage"
	"github.com/poiesic/passage/storage/badger"
	"github.com/poiesic/passage/storage/sqlite"
	"github.com/poiesic/passage/tokenizer"
)

// Storage backends accepted by WithBackend.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Database ties a chunk store to an embedding provider and a tokenizer.
type Database struct {
	repo      storage.ChunkRepository
	provider  ai.AIProvider
	tokenizer tokenizer.Tokenizer
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	backend   string
	provider  ai.AIProvider
	tokenizer tokenizer.Tokenizer
	encoding  string
	logger    *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithBackend selects the storage backend. Default is BackendBadger.
func WithBackend(backend string) DatabaseOption {
	return func(o *databaseOptions) {
		o.backend = backend
	}
}

// WithProvider uses provider instead of building one from the AI configuration.
// The Database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithTokenizer sets the tokenizer shared by chunkers.
func WithTokenizer(tok tokenizer.Tokenizer) DatabaseOption {
	return func(o *databaseOptions) {
		o.tokenizer = tok
	}
}

// WithEncoding selects the tiktoken encoding used when no tokenizer is set.
func WithEncoding(encoding string) DatabaseOption {
	return func(o *databaseOptions) {
		o.encoding = encoding
	}
}

// WithDatabaseLogger sets a custom logger.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		backend:  BackendBadger,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	tok := options.tokenizer
	if tok == nil {
		tiktoken, err := tokenizer.NewTiktoken(options.encoding)
		if err != nil {
			return nil, err
		}
		tok = tiktoken
	}

	repo, err := OpenRepository(options.backend, filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	return &Database{
		repo:      repo,
		provider:  provider,
		tokenizer: tok,
		logger:    options.logger,
	}, nil
}

// OpenRepository opens only the chunk store at path, for callers that need
// no embedding provider or tokenizer.
func OpenRepository(backend, path string) (storage.ChunkRepository, error) {
	switch strings.ToLower(backend) {
	case BackendBadger, "":
		return badger.NewRepository(path)
	case BackendSQLite:
		return sqlite.NewRepository(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	return nil
}

func (db *Database) Repository() storage.ChunkRepository {
	return db.repo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

func (db *Database) Tokenizer() tokenizer.Tokenizer {
	return db.tokenizer
}

func (db *Database) NewChunker(opts ...chunking.Option) (*chunking.Chunker, error) {
	return chunking.New(db.tokenizer, opts...)
}

func (db *Database) NewIngestor(opts ...ingestion.Option) (*ingestion.Ingestor, error) {
	return ingestion.NewIngestor(db.repo, db.provider.Embedder(), opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.repo, db.provider.Embedder(), opts...)
}
