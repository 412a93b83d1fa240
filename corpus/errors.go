package corpus

import "errors"

var (
	// ErrInvalidCorpus is returned when the file cannot be decoded or an essay is invalid.
	ErrInvalidCorpus = errors.New("invalid corpus")

	// ErrCorpusRequired is returned when Save is called with a nil corpus.
	ErrCorpusRequired = errors.New("corpus required")
)
