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
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/ai/keywords"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// parseAttempts bounds retries on malformed model output.
const parseAttempts = 3

// TopicExtractor implements ai.TopicExtractor using OpenAI-compatible chat APIs.
// When the model keeps returning unparseable output it falls back to
// keyword frequency; transport errors are returned.
type TopicExtractor struct {
	client   llms.Model
	fallback ai.TopicExtractor
	logger   *slog.Logger
}

// topicResponse is the JSON shape requested from the model.
type topicResponse struct {
	Topics []string `json:"topics"`
}

// newTopicExtractor is an internal constructor that returns the concrete type.
func newTopicExtractor(client llms.Model) *TopicExtractor {
	return &TopicExtractor{
		client:   client,
		fallback: keywords.Extractor{},
		logger:   slog.Default().With("component", "openai-topics"),
	}
}

// NewTopicExtractor creates a topic extractor using the provided configuration.
//
// Returns ai.TopicExtractor interface to enforce abstraction.
func NewTopicExtractor(config *ai.Config) (ai.TopicExtractor, error) {
	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	return newTopicExtractor(client), nil
}

// ExtractTopics asks the model for at most k topics.
func (e *TopicExtractor) ExtractTopics(ctx context.Context, texts []string, k int) ([]string, error) {
	if k <= 0 || len(texts) == 0 {
		return []string{}, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildTopicPrompt(k)),
		llms.TextParts(llms.ChatMessageTypeHuman, joinForPrompt(texts)),
	}

	var result topicResponse
	var lastErr error
	for attempt := 0; attempt < parseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}
		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []string{}, nil
		}

		responseText := cleanJSONResponse(response.Choices[0].Content)
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing topic response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Warn("falling back to keyword topics", "err", lastErr)
		return e.fallback.ExtractTopics(ctx, texts, k)
	}

	topics := make([]string, 0, min(k, len(result.Topics)))
	seen := make(map[string]bool, len(result.Topics))
	for _, t := range result.Topics {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
		if len(topics) == k {
			break
		}
	}
	e.logger.Debug("extracted topics", "returned", len(result.Topics), "kept", len(topics))
	return topics, nil
}

// newChatClient builds the langchaingo client for config.ChatHost.
func newChatClient(config *ai.Config) (*openai.LLM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	token := config.APIKey
	if token == "" {
		// local OpenAI-compatible services don't require authentication
		token = "none"
	}
	return openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(token),
		openai.WithModel(config.ChatModel),
	)
}
