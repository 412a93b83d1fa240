package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a chunk repository is not provided.
	ErrRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrPacerRequired is returned when WithPacer is given nil.
	ErrPacerRequired = errors.New("pacer required")

	// ErrInvalidDelay is returned when the inter-chunk delay is negative.
	ErrInvalidDelay = errors.New("delay cannot be negative")

	// ErrInvalidRateLimit is returned when the rate or burst is not positive.
	ErrInvalidRateLimit = errors.New("rate limit and burst must be greater than 0")

	// ErrLookupFailed marks a chunk whose existence check failed.
	ErrLookupFailed = errors.New("existence check failed")

	// ErrEmbeddingFailed marks a chunk the embedding service could not embed.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrPersistenceFailed marks a chunk whose record could not be stored.
	ErrPersistenceFailed = errors.New("persistence failed")
)
