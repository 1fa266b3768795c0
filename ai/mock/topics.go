package mock

import (
	"context"
	"sync"

	"github.com/poiesic/talentscout/ai/keywords"
)

// MockTopicExtractor is a test double for ai.TopicExtractor.
type MockTopicExtractor struct {
	// ExtractTopicsFunc is called by ExtractTopics if set.
	// If nil, uses keyword frequency.
	ExtractTopicsFunc func(ctx context.Context, texts []string, k int) ([]string, error)

	mu        sync.Mutex
	callCount int
}

// NewMockTopicExtractor creates a mock topic extractor with default behavior.
func NewMockTopicExtractor() *MockTopicExtractor {
	return &MockTopicExtractor{}
}

// ExtractTopics implements ai.TopicExtractor.
func (m *MockTopicExtractor) ExtractTopics(ctx context.Context, texts []string, k int) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ExtractTopicsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts, k)
	}
	return keywords.Top(texts, k), nil
}

// CallCount returns the number of ExtractTopics calls.
func (m *MockTopicExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockTopicExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ExtractTopicsFunc = nil
}
