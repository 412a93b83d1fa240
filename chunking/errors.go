package chunking

import "errors"

var (
	// ErrTokenizerRequired is returned when a tokenizer is not provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidMinChunkTokens is returned when the merge threshold is negative.
	ErrInvalidMinChunkTokens = errors.New("minimum chunk tokens cannot be negative")
)
