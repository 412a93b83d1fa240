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

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/passage"
	"github.com/poiesic/passage/chunking"
	"github.com/poiesic/passage/config"
	"github.com/poiesic/passage/corpus"
	"github.com/poiesic/passage/ingestion"
	"github.com/poiesic/passage/tokenizer"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "passage",
		Usage: "Chunk long-form essays and ingest them into a vector store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "tokenizer",
				Usage: "Token counter (tiktoken, words)",
				Value: "tiktoken",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "chunk",
				Usage:  "Split the essays of a corpus file into chunks",
				Action: chunkCommand,
				Flags: append([]cli.Flag{
					corpusFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Where to write the chunked corpus (defaults to the input file)",
					},
				}, chunkFlags()...),
			},
			{
				Name:   "ingest",
				Usage:  "Embed and store the chunks of a corpus file",
				Action: ingestCommand,
				Flags: append(append(append([]cli.Flag{
					corpusFlag(),
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause between consecutive chunks",
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Chunks per second; overrides --delay when positive",
					},
					&cli.IntFlag{
						Name:  "burst",
						Usage: "Burst size for --rate-limit",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 10,
					},
				}, dbFlags()...), embeddingFlags()...), chunkFlags()...),
			},
			{
				Name:      "search",
				Usage:     "Find the stored chunks most similar to a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(append([]cli.Flag{
					&cli.IntFlag{
						Name:    "max-hits",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Cosine similarity threshold",
					},
				}, dbFlags()...), embeddingFlags()...),
			},
			{
				Name:   "stats",
				Usage:  "Report the number of stored chunks",
				Action: statsCommand,
				Flags:  dbFlags(),
			},
		},
	}
}

func corpusFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "corpus",
		Usage:    "Path to the JSON corpus file",
		Required: true,
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the database",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Storage backend (badger, sqlite)",
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
	}
}

func chunkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Token budget of a chunk",
		},
		&cli.IntFlag{
			Name:  "min-chunk-tokens",
			Usage: "Chunks below this size are merged into their predecessor",
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "tiktoken encoding name",
		},
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg.ApplyEnv()
	}

	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("backend") {
		cfg.Database.Backend = strings.ToLower(c.String("backend"))
	}
	if c.IsSet("embedding-host") {
		cfg.Embedding.Host = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.Embedding.Model = c.String("embedding-model")
	}
	if c.IsSet("chunk-size") {
		cfg.Chunking.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("min-chunk-tokens") {
		cfg.Chunking.MinChunkTokens = c.Int("min-chunk-tokens")
	}
	if c.IsSet("encoding") {
		cfg.Chunking.Encoding = c.String("encoding")
	}
	if c.IsSet("delay") {
		cfg.Ingestion.Delay = c.Duration("delay")
	}
	if c.IsSet("rate-limit") {
		cfg.Ingestion.RateLimit = c.Float64("rate-limit")
	}
	if c.IsSet("burst") {
		cfg.Ingestion.Burst = c.Int("burst")
	}
	if c.IsSet("min-similarity") {
		cfg.Search.MinSimilarity = float32(c.Float64("min-similarity"))
	}
	if c.IsSet("max-hits") {
		cfg.Search.MaxHits = c.Int("max-hits")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newTokenizer(c *cli.Context, cfg *config.Config) (tokenizer.Tokenizer, error) {
	switch strings.ToLower(c.String("tokenizer")) {
	case "words":
		return tokenizer.Words{}, nil
	case "tiktoken", "":
		return tokenizer.NewTiktoken(cfg.Chunking.Encoding)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q: must be one of tiktoken, words", c.String("tokenizer"))
	}
}

func openDatabase(c *cli.Context, cfg *config.Config) (*passage.Database, error) {
	tok, err := newTokenizer(c, cfg)
	if err != nil {
		return nil, err
	}

	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := passage.NewDatabase(cfg.Database.Path,
		passage.WithBackend(cfg.Database.Backend),
		passage.WithAIConfig(aiConfig),
		passage.WithTokenizer(tok),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func chunkCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	tok, err := newTokenizer(c, cfg)
	if err != nil {
		return err
	}

	input := c.String("corpus")
	corp, err := corpus.Load(input, tok)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	chunker, err := chunking.New(tok, cfg.ChunkerOptions()...)
	if err != nil {
		return err
	}
	for _, essay := range corp.Essays {
		essay.Chunks = chunker.Chunk(&essay.Document)
	}

	output := c.String("output")
	if output == "" {
		output = input
	}
	if err := corpus.Save(output, corp); err != nil {
		return fmt.Errorf("failed to save corpus: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Chunked %d essays into %d chunks (%d tokens)\n",
		len(corp.Essays), corp.ChunkCount(), corp.Tokens)
	return nil
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	corp, err := corpus.Load(c.String("corpus"), db.Tokenizer())
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	// Essays that were never chunked are chunked on the fly.
	chunker, err := db.NewChunker(cfg.ChunkerOptions()...)
	if err != nil {
		return err
	}
	for _, essay := range corp.Essays {
		if len(essay.Chunks) == 0 {
			essay.Chunks = chunker.Chunk(&essay.Document)
		}
	}

	ingestor, err := db.NewIngestor(cfg.IngestorOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create ingestor: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s (%s)\n", cfg.Database.Path, cfg.Database.Backend)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(c.App.ErrWriter)

	tracker := ingestion.NewProgressTracker(c.App.ErrWriter, corp.ChunkCount(), c.Int("report-interval"))
	tracker.Start()
	for _, essay := range corp.Essays {
		if err := ingestor.IngestFunc(ctx, essay.Chunks, tracker.Record); err != nil {
			tracker.Finish()
			return fmt.Errorf("ingestion interrupted: %w", err)
		}
	}
	tracker.Finish()

	summary := tracker.Summary()
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d chunks failed; re-run to retry them", summary.Failed, summary.Total())
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(c, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(cfg.SearcherOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.FindSimilar(c.Context, query, cfg.Search.MaxHits)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: [%0.3f] %s (%s)\n", i, hit.Score, hit.Record.Content, hit.Record.EssayURL)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	repo, err := passage.OpenRepository(cfg.Database.Backend, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	count, err := repo.CountRecords(c.Context)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Database: %s (%s)\n", cfg.Database.Path, cfg.Database.Backend)
	fmt.Fprintf(c.App.Writer, "Chunks: %d\n", count)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
