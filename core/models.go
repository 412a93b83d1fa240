package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored records.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs. Distinct content may collide,
// so callers that need exact matching must still compare the text.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is an extracted long-form text with its provenance metadata.
// Documents are produced by the acquisition side and never mutated.
type Document struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date"` // May be empty when the source date was not parsed
	Authors string `json:"authors"`
	Content string `json:"content"`
	Tokens  int    `json:"tokens"` // Token count of the trimmed content
}

// Chunk is a contiguous, token-bounded span of a Document's content.
// The essay fields are copied from the parent Document so a chunk can be
// retrieved on its own.
type Chunk struct {
	EssayTitle    string    `json:"essay_title"`
	EssayURL      string    `json:"essay_url"`
	EssayDate     string    `json:"essay_date"`
	EssayAuthors  string    `json:"essay_authors"`
	Content       string    `json:"content"`
	ContentTokens int       `json:"content_tokens"`
	Embedding     []float32 `json:"embedding"` // Populated by the ingestor once the record is stored
}

// NewChunk creates a chunk of the given document with the denormalized fields populated.
func NewChunk(doc *Document, content string, tokens int) *Chunk {
	return &Chunk{
		EssayTitle:    doc.Title,
		EssayURL:      doc.URL,
		EssayDate:     doc.Date,
		EssayAuthors:  doc.Authors,
		Content:       content,
		ContentTokens: tokens,
		Embedding:     []float32{},
	}
}

// Record is the persisted form of a Chunk together with its embedding.
// The store keeps at most one Record per distinct Content.
type Record struct {
	Id            ID
	EssayTitle    string
	EssayURL      string
	EssayDate     string
	EssayAuthors  string
	Content       string
	ContentTokens int
	Embedding     []float32
	InsertedAt    time.Time // When the record was inserted into the store
}

// NewRecord builds a Record for a chunk and its embedding vector.
// The ID and insertion time are assigned by the store.
func NewRecord(chunk *Chunk, embedding []float32) *Record {
	return &Record{
		EssayTitle:    chunk.EssayTitle,
		EssayURL:      chunk.EssayURL,
		EssayDate:     chunk.EssayDate,
		EssayAuthors:  chunk.EssayAuthors,
		Content:       chunk.Content,
		ContentTokens: chunk.ContentTokens,
		Embedding:     embedding,
	}
}

// SearchResult represents a search result with the full record and relevance score.
type SearchResult struct {
	Record *Record
	Score  float32
}
