package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/talentscout/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestTopicExtractor_ParsesResponse(t *testing.T) {
	model := &fakeModel{responses: []string{`{"topics": ["Protein Folding", "structural biology", "protein folding", "drug design"]}`}}
	e := newTopicExtractor(model)

	topics, err := e.ExtractTopics(context.Background(), []string{"AlphaFold\nProtein structure"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"protein folding", "structural biology"}, topics)
	assert.Equal(t, 1, model.calls)

	require.Len(t, model.lastMsgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.lastMsgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.lastMsgs[1].Role)
}

func TestTopicExtractor_RepairsFencedOutput(t *testing.T) {
	model := &fakeModel{responses: []string{"```json\n{topics\": [\"robotics\"]}\n```"}}
	topics, err := newTopicExtractor(model).ExtractTopics(context.Background(), []string{"x"}, 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"robotics"}, topics)
}

func TestTopicExtractor_FallsBackAfterMalformedOutput(t *testing.T) {
	model := &fakeModel{responses: []string{"not json at all"}}
	topics, err := newTopicExtractor(model).ExtractTopics(context.Background(), []string{"robotics robotics manipulation"}, 8)
	require.NoError(t, err)
	assert.Equal(t, parseAttempts, model.calls)
	assert.Equal(t, []string{"robotics", "manipulation"}, topics)
}

func TestTopicExtractor_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	model := &fakeModel{err: boom}
	_, err := newTopicExtractor(model).ExtractTopics(context.Background(), []string{"x"}, 8)
	assert.ErrorIs(t, err, boom)
}

func TestTopicExtractor_EmptyInput(t *testing.T) {
	model := &fakeModel{}
	topics, err := newTopicExtractor(model).ExtractTopics(context.Background(), nil, 8)
	require.NoError(t, err)
	assert.Empty(t, topics)
	assert.Zero(t, model.calls)
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid passes through", `{"topics": ["a"]}`, `{"topics": ["a"]}`},
		{"strips fences", "```json\n{\"topics\": []}\n```", `{"topics": []}`},
		{"adds missing quote", `{topics": []}`, `{"topics": []}`},
		{"after comma", `{"a": 1, b_c": 2}`, `{"a": 1, "b_c": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONResponse(tt.in))
		})
	}
}

func TestChatCompleter(t *testing.T) {
	model := &fakeModel{responses: []string{"I mostly work on RL."}}
	c := newChatCompleter(model, 0.2)

	answer, err := c.CompleteChat(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "You are Ada."},
		{Role: ai.RoleUser, Content: "What do you work on?"},
		{Role: ai.RoleAssistant, Content: "Engines."},
	})
	require.NoError(t, err)
	assert.Equal(t, "I mostly work on RL.", answer)
	require.Len(t, model.lastMsgs, 3)
	assert.Equal(t, llms.ChatMessageTypeAI, model.lastMsgs[2].Role)
}

func TestChatCompleter_NoChoices(t *testing.T) {
	_, err := newChatCompleter(&fakeModel{}, 0).CompleteChat(context.Background(), []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestOfflineChat(t *testing.T) {
	answer, err := offlineChat{}.CompleteChat(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "persona"},
		{Role: ai.RoleUser, Content: "favorite paper?"},
	})
	require.NoError(t, err)
	assert.Contains(t, answer, "favorite paper?")
	assert.Contains(t, answer, "[offline]")
}

func TestNewProvider_Offline(t *testing.T) {
	p, err := NewProvider(ai.NewConfig(ai.WithEmbedDim(64)))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "hash-emb-64", p.Embedder().Model())
	topics, err := p.TopicExtractor().ExtractTopics(context.Background(), []string{"robotics"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"robotics"}, topics)
	_, ok := p.ChatCompleter().(offlineChat)
	assert.True(t, ok)
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbedDim(-1)))
	assert.Error(t, err)
}
