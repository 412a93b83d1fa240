// Package config loads the passage configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/chunking"
	"github.com/poiesic/passage/ingestion"
	"github.com/poiesic/passage/search"
	"github.com/poiesic/passage/tokenizer"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// TokenEnv is the environment variable consulted when no API token is configured.
const TokenEnv = "OPENAI_API_KEY"

// Config holds all configuration for passage.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Search    SearchConfig    `yaml:"search"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Path    string `yaml:"path"`
	Backend string `yaml:"backend"`
}

// EmbeddingConfig holds embedding service settings.
type EmbeddingConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
	Token string `yaml:"token"`
}

// ChunkingConfig holds chunk budget settings.
type ChunkingConfig struct {
	ChunkSize      int    `yaml:"chunk_size"`
	MinChunkTokens int    `yaml:"min_chunk_tokens"`
	Encoding       string `yaml:"encoding"`
}

// IngestionConfig holds pacing settings. A positive RateLimit takes
// precedence over Delay.
type IngestionConfig struct {
	Delay     time.Duration `yaml:"delay"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	MinSimilarity float32 `yaml:"min_similarity"`
	VerbatimBoost float32 `yaml:"verbatim_boost"`
	MaxHits       int     `yaml:"max_hits"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    "passage.db",
			Backend: BackendBadger,
		},
		Embedding: EmbeddingConfig{
			Host:  ai.DefaultEmbeddingHost,
			Model: ai.DefaultEmbeddingModel,
		},
		Chunking: ChunkingConfig{
			ChunkSize:      chunking.DefaultChunkSize,
			MinChunkTokens: chunking.DefaultMinChunkTokens,
			Encoding:       tokenizer.DefaultEncoding,
		},
		Ingestion: IngestionConfig{
			Delay: ingestion.DefaultDelay,
			Burst: 1,
		},
		Search: SearchConfig{
			MinSimilarity: search.DefaultMinSimilarity,
			VerbatimBoost: search.DefaultVerbatimBoost,
			MaxHits:       5,
		},
	}
}

// Load reads the config file at path over the defaults.
// Relative database paths are resolved against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Database.Path != "" && !filepath.IsAbs(cfg.Database.Path) {
		cfg.Database.Path = filepath.Join(filepath.Dir(path), cfg.Database.Path)
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv fills the API token from the environment when it is not set.
func (c *Config) ApplyEnv() {
	if c.Embedding.Token == "" {
		c.Embedding.Token = os.Getenv(TokenEnv)
	}
}

// Validate checks the configuration for values the components would reject.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Database.Backend) {
	case BackendBadger, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown database backend %q", c.Database.Backend))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.Chunking.ChunkSize <= 0 {
		errs = append(errs, chunking.ErrInvalidChunkSize)
	}
	if c.Chunking.MinChunkTokens < 0 {
		errs = append(errs, chunking.ErrInvalidMinChunkTokens)
	}
	if c.Ingestion.RateLimit < 0 || (c.Ingestion.RateLimit > 0 && c.Ingestion.Burst <= 0) {
		errs = append(errs, ingestion.ErrInvalidRateLimit)
	}
	if c.Ingestion.RateLimit == 0 && c.Ingestion.Delay < 0 {
		errs = append(errs, ingestion.ErrInvalidDelay)
	}
	if c.Search.MinSimilarity < -1 || c.Search.MinSimilarity > 1 {
		errs = append(errs, search.ErrInvalidMinSimilarity)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// AIConfig returns the embedding settings as an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIToken(c.Embedding.Token),
	)
}

// ChunkerOptions returns the chunking settings as chunker options.
func (c *Config) ChunkerOptions() []chunking.Option {
	return []chunking.Option{
		chunking.WithChunkSize(c.Chunking.ChunkSize),
		chunking.WithMinChunkTokens(c.Chunking.MinChunkTokens),
	}
}

// IngestorOptions returns the pacing settings as ingestor options.
func (c *Config) IngestorOptions() []ingestion.Option {
	if c.Ingestion.RateLimit > 0 {
		return []ingestion.Option{ingestion.WithRateLimit(c.Ingestion.RateLimit, c.Ingestion.Burst)}
	}
	return []ingestion.Option{ingestion.WithDelay(c.Ingestion.Delay)}
}

// SearcherOptions returns the retrieval settings as searcher options.
func (c *Config) SearcherOptions() []search.Option {
	return []search.Option{
		search.WithMinSimilarity(c.Search.MinSimilarity),
		search.WithVerbatimBoost(c.Search.VerbatimBoost),
	}
}
