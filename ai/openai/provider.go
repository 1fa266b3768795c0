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


package openai

import (
	"log/slog"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/ai/hashing"
	"github.com/poiesic/talentscout/ai/keywords"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Without an API key it runs offline: keyword topics and stub chat answers.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	topics   ai.TopicExtractor
	chat     ai.ChatCompleter
	logger   *slog.Logger
}

// NewProvider creates a new AI provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "openai-provider")

	p := &Provider{config: config, logger: logger}

	switch config.EmbeddingBackend {
	case ai.EmbeddingRemote:
		embedder, err := newEmbedder(config)
		if err != nil {
			return nil, err
		}
		p.embedder = embedder
	case ai.EmbeddingHashing:
		p.embedder = hashing.NewEmbedder(config.EmbedDim)
	}

	if config.Offline() {
		logger.Info("no chat API key configured, running offline")
		p.topics = keywords.Extractor{}
		p.chat = offlineChat{}
		return p, nil
	}

	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	p.topics = newTopicExtractor(client)
	p.chat = newChatCompleter(client, config.Temperature)
	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// TopicExtractor returns the topic extraction service.
func (p *Provider) TopicExtractor() ai.TopicExtractor {
	return p.topics
}

// ChatCompleter returns the chat completion service.
func (p *Provider) ChatCompleter() ai.ChatCompleter {
	return p.chat
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
