// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.TopicExtractor,
// ai.ChatCompleter and ai.AIProvider for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	topics := mock.NewMockTopicExtractor()
//	topics.ExtractTopicsFunc = func(ctx context.Context, texts []string, k int) ([]string, error) {
//	    return nil, errors.New("model unavailable")
//	}
//
//	// Check call counts
//	count := topics.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: the hashing embedder at 64 dimensions
//   - MockTopicExtractor: keyword frequency topics
//   - MockChatCompleter: echoes the last user message
//   - MockProvider: aggregates the three
package mock
