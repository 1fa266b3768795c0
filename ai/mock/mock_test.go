package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/talentscout/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_Defaults(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider().(*MockProvider)

	vec, err := p.Embedder().EmbedText(ctx, "graph neural networks")
	require.NoError(t, err)
	assert.Len(t, vec, DefaultDim)
	assert.Equal(t, "hash-emb-64", p.Embedder().Model())

	topics, err := p.TopicExtractor().ExtractTopics(ctx, []string{"robotics control robotics"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"robotics", "control"}, topics)

	answer, err := p.ChatCompleter().CompleteChat(ctx, []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", answer)

	assert.Equal(t, 1, p.GetMockEmbedder().CallCount())
	assert.Equal(t, 1, p.GetMockTopics().CallCount())
	assert.Equal(t, 1, p.GetMockChat().CallCount())
	assert.Len(t, p.GetMockChat().LastMessages(), 1)
}

func TestMockTopicExtractor_Injection(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockTopicExtractor()
	m.ExtractTopicsFunc = func(context.Context, []string, int) ([]string, error) { return nil, boom }

	_, err := m.ExtractTopics(context.Background(), []string{"x"}, 1)
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Zero(t, m.CallCount())
	_, err = m.ExtractTopics(context.Background(), []string{"x"}, 1)
	assert.NoError(t, err)
}
