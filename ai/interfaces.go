package ai

import "context"

// Embedder turns text into vectors for similarity search.
// Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText returns the embedding of a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts returns embeddings in the same order as texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider owns the embedding service and its lifecycle.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider.
	// The provider and its embedder must not be used afterwards.
	Close() error
}
