package chunking

import (
	"log/slog"
	"strings"

	"github.com/poiesic/passage/core"
	"github.com/poiesic/passage/tokenizer"
)

const (
	// DefaultChunkSize is the token budget of a chunk.
	DefaultChunkSize = 200

	// DefaultMinChunkTokens is the size below which a chunk is merged into its predecessor.
	DefaultMinChunkTokens = 100

	sentenceSeparator = ". "
)

// Chunker splits documents into token-bounded chunks.
// A Chunker holds no mutable state and is safe for concurrent use.
type Chunker struct {
	tokenizer      tokenizer.Tokenizer
	chunkSize      int
	minChunkTokens int
	logger         *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithChunkSize sets the token budget of a chunk.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size <= 0 {
			return ErrInvalidChunkSize
		}
		c.chunkSize = size
		return nil
	}
}

// WithMinChunkTokens sets the merge threshold.
// Chunks after the first with fewer tokens are merged into the preceding chunk.
// Default is DefaultMinChunkTokens.
func WithMinChunkTokens(tokens int) Option {
	return func(c *Chunker) error {
		if tokens < 0 {
			return ErrInvalidMinChunkTokens
		}
		c.minChunkTokens = tokens
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "chunker")
		return nil
	}
}

// New creates a Chunker counting tokens with tok.
func New(tok tokenizer.Tokenizer, opts ...Option) (*Chunker, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}

	c := &Chunker{
		tokenizer:      tok,
		chunkSize:      DefaultChunkSize,
		minChunkTokens: DefaultMinChunkTokens,
		logger:         slog.Default().With("component", "chunker"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// ChunkSize returns the configured token budget.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Chunk splits doc into an ordered sequence of chunks.
// It is deterministic and never fails: if splitting panics the trimmed content
// is returned as a single chunk. A nil document yields no chunks.
func (c *Chunker) Chunk(doc *core.Document) (chunks []*core.Chunk) {
	if doc == nil {
		return []*core.Chunk{}
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("chunking failed, keeping document as a single chunk",
				"url", doc.URL, "panic", r)
			chunks = []*core.Chunk{c.whole(doc)}
		}
	}()

	if c.tokenizer.Count(doc.Content) <= c.chunkSize {
		content := strings.TrimSpace(doc.Content)
		return []*core.Chunk{core.NewChunk(doc, content, c.tokenizer.Count(content))}
	}

	texts := c.split(doc.Content)
	chunks = make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = core.NewChunk(doc, text, c.tokenizer.Count(text))
	}

	merged := c.merge(chunks)
	c.logger.Debug("chunked document", "url", doc.URL, "chunks", len(merged), "merged", len(chunks)-len(merged))
	return merged
}

// ChunkAll chunks each document in order and returns the concatenated chunks.
func (c *Chunker) ChunkAll(docs []*core.Document) []*core.Chunk {
	var all []*core.Chunk
	for _, doc := range docs {
		all = append(all, c.Chunk(doc)...)
	}
	return all
}

// accumulator is the running state of the sentence fold.
type accumulator struct {
	done   []string
	buffer string
}

// split groups the sentence segments of content into chunk texts.
func (c *Chunker) split(content string) []string {
	var acc accumulator
	for _, segment := range strings.Split(content, sentenceSeparator) {
		acc = c.step(acc, segment)
	}
	return append(acc.done, strings.TrimSpace(acc.buffer))
}

// step appends one segment to the accumulator, flushing the buffer first if
// the segment would push it past the budget. An empty buffer is never flushed.
func (c *Chunker) step(acc accumulator, segment string) accumulator {
	if acc.buffer != "" && c.tokenizer.Count(acc.buffer)+c.tokenizer.Count(segment) > c.chunkSize {
		acc.done = append(acc.done, acc.buffer)
		acc.buffer = ""
	}

	if endsAlphanumeric(segment) {
		acc.buffer += segment + sentenceSeparator
	} else {
		acc.buffer += segment + " "
	}
	return acc
}

// merge folds chunks below the threshold into the preceding output chunk.
// It is a single forward pass: a chunk that received a merge is not re-checked.
func (c *Chunker) merge(chunks []*core.Chunk) []*core.Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	merged := make([]*core.Chunk, 0, len(chunks))
	merged = append(merged, chunks[0])
	for _, chunk := range chunks[1:] {
		if chunk.ContentTokens < c.minChunkTokens {
			prev := merged[len(merged)-1]
			prev.Content += " " + chunk.Content
			prev.ContentTokens += chunk.ContentTokens
			continue
		}
		merged = append(merged, chunk)
	}
	return merged
}

// whole returns the trimmed document content as one chunk.
func (c *Chunker) whole(doc *core.Document) *core.Chunk {
	content := strings.TrimSpace(doc.Content)
	return core.NewChunk(doc, content, c.safeCount(content, doc.Tokens))
}

// safeCount counts tokens, returning fallback if the tokenizer panics.
func (c *Chunker) safeCount(text string, fallback int) (n int) {
	defer func() {
		if r := recover(); r != nil {
			n = fallback
		}
	}()
	return c.tokenizer.Count(text)
}

// endsAlphanumeric reports whether s ends in an ASCII letter or digit.
func endsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	b := s[len(s)-1]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
