package orchestrator

import "errors"

var (
	// ErrJobRepositoryRequired is returned when no job repository is given.
	ErrJobRepositoryRequired = errors.New("job repository is required")

	// ErrCandidateRepositoryRequired is returned when no candidate repository is given.
	ErrCandidateRepositoryRequired = errors.New("candidate repository is required")

	// ErrDiscovererRequired is returned when no discovery source is given.
	ErrDiscovererRequired = errors.New("discoverer is required")

	// ErrEmbedderRequired is returned when no embedder is given.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrTopicExtractorRequired is returned when no topic extractor is given.
	ErrTopicExtractorRequired = errors.New("topic extractor is required")

	// ErrRegistryRequired is returned when no event registry is given.
	ErrRegistryRequired = errors.New("event registry is required")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("orchestrator is closed")
)
