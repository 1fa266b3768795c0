package mock

import (
	"context"
	"sync"

	"github.com/poiesic/talentscout/ai"
)

// MockChatCompleter is a test double for ai.ChatCompleter.
// It records the last conversation it was given.
type MockChatCompleter struct {
	// CompleteChatFunc is called by CompleteChat if set.
	// If nil, echoes the last user message.
	CompleteChatFunc func(ctx context.Context, messages []ai.Message) (string, error)

	mu        sync.Mutex
	callCount int
	last      []ai.Message
}

// NewMockChatCompleter creates a mock chat completer with default behavior.
func NewMockChatCompleter() *MockChatCompleter {
	return &MockChatCompleter{}
}

// CompleteChat implements ai.ChatCompleter.
func (m *MockChatCompleter) CompleteChat(ctx context.Context, messages []ai.Message) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.last = append([]ai.Message(nil), messages...)
	fn := m.CompleteChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			return "echo: " + messages[i].Content, nil
		}
	}
	return "", nil
}

// LastMessages returns a copy of the most recent conversation.
func (m *MockChatCompleter) LastMessages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.Message(nil), m.last...)
}

// CallCount returns the number of CompleteChat calls.
func (m *MockChatCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears recorded state and injected behavior.
func (m *MockChatCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.last = nil
	m.CompleteChatFunc = nil
}
