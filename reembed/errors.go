package reembed

import "errors"

var (
	// ErrPostRepositoryRequired is returned when no post repository is given.
	ErrPostRepositoryRequired = errors.New("post repository is required")

	// ErrEmbeddingRepositoryRequired is returned when no embedding repository is given.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository is required")

	// ErrEmbedderRequired is returned when no embedder is given.
	ErrEmbedderRequired = errors.New("embedder is required")
)
