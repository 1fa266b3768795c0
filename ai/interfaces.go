package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model names the embedding model; it is stored next to every vector.
	Model() string
}

// TopicExtractor summarizes a body of text into a short list of topics.
// Implementations must be thread-safe for concurrent use.
type TopicExtractor interface {
	// ExtractTopics returns at most k topics, most salient first.
	// Returns an empty slice if nothing salient is found.
	ExtractTopics(ctx context.Context, texts []string, k int) ([]string, error)
}

// Role is the author of a chat message.
type Role int

const (
	RoleSystem Role = iota + 1
	RoleUser
	RoleAssistant
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// ChatCompleter produces the next assistant message of a conversation.
// Implementations must be thread-safe for concurrent use.
type ChatCompleter interface {
	CompleteChat(ctx context.Context, messages []Message) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// TopicExtractor returns the topic extraction service.
	TopicExtractor() TopicExtractor

	// ChatCompleter returns the chat completion service.
	ChatCompleter() ChatCompleter

	// Close releases resources held by the provider and its services.
	Close() error
}
