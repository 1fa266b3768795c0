// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/talentscout/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder, topic extractor and chat completer instances.
type MockProvider struct {
	embedder *MockEmbedder
	topics   *MockTopicExtractor
	chat     *MockChatCompleter
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockTopics()/GetMockChat() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockTopicExtractor(), NewMockChatCompleter())
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, topics *MockTopicExtractor, chat *MockChatCompleter) ai.AIProvider {
	return &MockProvider{
		embedder: embedder,
		topics:   topics,
		chat:     chat,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// TopicExtractor returns the mock topic extractor.
func (p *MockProvider) TopicExtractor() ai.TopicExtractor {
	return p.topics
}

// ChatCompleter returns the mock chat completer.
func (p *MockProvider) ChatCompleter() ai.ChatCompleter {
	return p.chat
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockTopics returns the underlying mock topic extractor for test assertions.
func (p *MockProvider) GetMockTopics() *MockTopicExtractor {
	return p.topics
}

// GetMockChat returns the underlying mock chat completer for test assertions.
func (p *MockProvider) GetMockChat() *MockChatCompleter {
	return p.chat
}
