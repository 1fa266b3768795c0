package retrieval

import "errors"

var (
	// ErrNoCorpus is returned when no strategy found any text to answer from.
	ErrNoCorpus = errors.New("no posts available for candidate")

	// ErrEmptyMessage is returned for a chat request without a question.
	ErrEmptyMessage = errors.New("message required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrHandleRequired is returned for a handle chat without a handle.
	ErrHandleRequired = errors.New("handle required")

	// ErrChatCompleterRequired is returned when a chat completer is not provided.
	ErrChatCompleterRequired = errors.New("chat completer required")

	// ErrRepositoryRequired is returned when a repository is not provided.
	ErrRepositoryRequired = errors.New("repository required")
)
