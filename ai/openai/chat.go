package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/talentscout/ai"
	"github.com/tmc/langchaingo/llms"
)

// ErrNoChoices is returned when the model produced no completion.
var ErrNoChoices = errors.New("model returned no choices")

// ChatCompleter implements ai.ChatCompleter using OpenAI-compatible chat APIs.
type ChatCompleter struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

func newChatCompleter(client llms.Model, temperature float64) *ChatCompleter {
	return &ChatCompleter{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-chat"),
	}
}

// NewChatCompleter creates a chat completer using the provided configuration.
//
// Returns ai.ChatCompleter interface to enforce abstraction.
func NewChatCompleter(config *ai.Config) (ai.ChatCompleter, error) {
	client, err := newChatClient(config)
	if err != nil {
		return nil, err
	}
	return newChatCompleter(client, config.Temperature), nil
}

// CompleteChat sends the conversation and returns the first choice.
func (c *ChatCompleter) CompleteChat(ctx context.Context, messages []ai.Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(messageType(m.Role), m.Content))
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("chat completion failed", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrNoChoices
	}
	return response.Choices[0].Content, nil
}

func messageType(r ai.Role) llms.ChatMessageType {
	switch r {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleUser:
		return llms.ChatMessageTypeHuman
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	}
	return llms.ChatMessageTypeHuman
}

// offlineChat answers without a model, echoing the last user message.
type offlineChat struct{}

func (offlineChat) CompleteChat(ctx context.Context, messages []ai.Message) (string, error) {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			last = messages[i].Content
			break
		}
	}
	if len(last) > 200 {
		last = last[:200]
	}
	return fmt.Sprintf("[offline] You asked: %s... (no chat API key configured)", last), nil
}
