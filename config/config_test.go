package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/passage/ai"
	"github.com/poiesic/passage/ai/mock"
	"github.com/poiesic/passage/chunking"
	"github.com/poiesic/passage/ingestion"
	"github.com/poiesic/passage/search"
	"github.com/poiesic/passage/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendBadger, cfg.Database.Backend)
	assert.Equal(t, ai.DefaultEmbeddingHost, cfg.Embedding.Host)
	assert.Equal(t, chunking.DefaultChunkSize, cfg.Chunking.ChunkSize)
	assert.Equal(t, chunking.DefaultMinChunkTokens, cfg.Chunking.MinChunkTokens)
	assert.Equal(t, ingestion.DefaultDelay, cfg.Ingestion.Delay)
	assert.Equal(t, float32(search.DefaultMinSimilarity), cfg.Search.MinSimilarity)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Setenv(TokenEnv, "")
	path := writeConfig(t, `
database:
  path: data/chunks.db
  backend: sqlite
embedding:
  host: http://localhost:11434
  model: nomic-embed-text
  token: secret
chunking:
  chunk_size: 150
ingestion:
  delay: 1s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(path), "data", "chunks.db"), cfg.Database.Path)
	assert.Equal(t, BackendSQLite, cfg.Database.Backend)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, "secret", cfg.Embedding.Token)
	assert.Equal(t, 150, cfg.Chunking.ChunkSize)
	assert.Equal(t, chunking.DefaultMinChunkTokens, cfg.Chunking.MinChunkTokens, "unset values keep defaults")
	assert.Equal(t, time.Second, cfg.Ingestion.Delay)
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	t.Setenv(TokenEnv, "from-env")
	cfg, err := Load(writeConfig(t, "database:\n  path: /tmp/passage.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedding.Token)
	assert.Equal(t, "/tmp/passage.db", cfg.Database.Path)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "database: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "database:\n  backend: postgres\n"))
		assert.ErrorContains(t, err, "unknown database backend")
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := Load(writeConfig(t, "chunking:\n  chunk_size: 0\n"))
		assert.ErrorIs(t, err, chunking.ErrInvalidChunkSize)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Ingestion.RateLimit = 2
	cfg.Ingestion.Burst = 0
	assert.ErrorIs(t, cfg.Validate(), ingestion.ErrInvalidRateLimit)

	cfg = Default()
	cfg.Search.MinSimilarity = 2
	assert.ErrorIs(t, cfg.Validate(), search.ErrInvalidMinSimilarity)

	cfg = Default()
	cfg.Ingestion.Delay = -time.Second
	assert.ErrorIs(t, cfg.Validate(), ingestion.ErrInvalidDelay)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(TokenEnv, "")
	cfg := Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "db")
	cfg.Ingestion.RateLimit = 3
	cfg.Ingestion.Burst = 2
	cfg.Ingestion.Delay = 1500 * time.Millisecond

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestComponentOptions(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://localhost:8080"

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://localhost:8080/v1", aiCfg.EmbeddingHost)

	assert.Len(t, cfg.ChunkerOptions(), 2)
	assert.Len(t, cfg.SearcherOptions(), 2)
	assert.Len(t, cfg.IngestorOptions(), 1)

	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()

	cfg.Ingestion.RateLimit = 5
	_, err = ingestion.NewIngestor(repo, mock.NewMockEmbedder(), cfg.IngestorOptions()...)
	assert.NoError(t, err)

	cfg.Ingestion.Burst = 0
	_, err = ingestion.NewIngestor(repo, mock.NewMockEmbedder(), cfg.IngestorOptions()...)
	assert.ErrorIs(t, err, ingestion.ErrInvalidRateLimit)
}
