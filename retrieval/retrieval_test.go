package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/talentscout/ai/hashing"
	"github.com/poiesic/talentscout/ai/mock"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/ingestion"
	"github.com/poiesic/talentscout/storage"
	"github.com/poiesic/talentscout/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *badger.Store
	embedder *hashing.Embedder
	service  *Service
	pipeline *ingestion.Pipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	embedder := hashing.NewEmbedder(hashing.DefaultDim)
	service, err := NewService(store.Posts, store.Embeddings, embedder, nil)
	require.NoError(t, err)
	pipeline, err := ingestion.NewPipeline(store.Posts, store.Embeddings, embedder)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &fixture{store: store, embedder: embedder, service: service, pipeline: pipeline}
}

func (f *fixture) candidate(t *testing.T, name, handle string) *core.Candidate {
	t.Helper()
	c := &core.Candidate{JobID: "job-1", Name: name, Affiliation: "MIT", SocialHandle: handle}
	require.NoError(t, f.store.Candidates.SaveCandidateBundle(context.Background(), &storage.CandidateBundle{Candidate: c}))
	return c
}

func posts(texts ...string) []*core.SocialPost {
	out := make([]*core.SocialPost, len(texts))
	for i, text := range texts {
		out[i] = &core.SocialPost{Source: "x", PostID: fmt.Sprintf("p%d", i+1), Text: text}
	}
	return out
}

func TestTopK_StableTies(t *testing.T) {
	v := []float32{1, 0}
	items := []Item{{Ref: "a", Vector: v}, {Ref: "b", Vector: []float32{0, 1}}, {Ref: "c", Vector: v}, {Ref: "d", Vector: v}}

	hits, err := TopK(items, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"a", "c", "d"}, []string{hits[0].Ref, hits[1].Ref, hits[2].Ref})

	hits, err = TopK(items, []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
	assert.Equal(t, "b", hits[3].Ref)

	hits, err = TopK(items, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTopK_DimensionMismatch(t *testing.T) {
	_, err := TopK([]Item{{Vector: []float32{1, 0, 0}}}, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, hashing.ErrDimensionMismatch)
}

func TestRetrieve_MachineLearningScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.candidate(t, "Ada", "")

	_, err := f.pipeline.Ingest(ctx, c.Id, posts(
		"coffee first",
		"sunny afternoon walk",
		"machine learning",
		"gardening tips",
		"machine learning rocks",
	))
	require.NoError(t, err)

	hits, err := f.service.Retrieve(ctx, c.Id, "machine learning", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "p3", hits[0].Ref)
	assert.Equal(t, "p5", hits[1].Ref)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRetrieve_SkipsOtherDimensions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.candidate(t, "Ada", "")

	_, err := f.pipeline.Ingest(ctx, c.Id, posts("graph theory", "type systems"))
	require.NoError(t, err)

	stored, err := f.store.Posts.GetPosts(ctx, c.Id)
	require.NoError(t, err)
	// overwrite one post's vector with an older, smaller embedding
	require.NoError(t, f.store.Embeddings.SaveEmbeddings(ctx, &core.EmbeddingRecord{
		OwnerID: c.Id, Kind: core.EmbeddingKindPost, RefID: stored[0].Id, Model: "hash-emb-3", Dim: 3, Vector: []float32{1, 0, 0},
	}))

	hits, err := f.service.Retrieve(ctx, c.Id, "graph theory", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p2", hits[0].Ref)
}

func TestRetrieve_NoEmbeddings(t *testing.T) {
	f := newFixture(t)
	hits, err := f.service.Retrieve(context.Background(), 99, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRetrieveInline(t *testing.T) {
	f := newFixture(t)
	hits, err := f.service.RetrieveInline(context.Background(),
		[]string{"coffee", "", "machine learning", "machine learning rocks"}, "machine learning", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "line_3", hits[0].Ref)
	assert.Equal(t, "line_4", hits[1].Ref)

	// nothing was persisted
	records, err := f.store.Embeddings.GetEmbeddings(context.Background(), hits[0].ID, core.EmbeddingKindPost)
	require.NoError(t, err)
	assert.Empty(t, records)
}

// fakeFetcher is a PostFetcher returning fixed posts.
type fakeFetcher struct {
	posts  []*core.SocialPost
	err    error
	calls  int
	handle string
}

func (f *fakeFetcher) FetchPosts(ctx context.Context, handle string, limit int) ([]*core.SocialPost, error) {
	f.calls++
	f.handle = handle
	return f.posts, f.err
}

func (f *fixture) strategies(fetcher PostFetcher) []Strategy {
	return []Strategy{
		StoredPosts{Service: f.service},
		SocialAPI{Service: f.service, Fetcher: fetcher, Ingester: f.pipeline},
		InlineTexts{Service: f.service},
	}
}

func TestResolve_Order(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.candidate(t, "Ada", "ada")
	fetcher := &fakeFetcher{posts: posts("robots are fun", "sunny day")}

	// nothing stored: fetched from the social API and ingested
	source, hits, err := Resolve(ctx, f.strategies(fetcher), Subject{Candidate: c}, "robots", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "social", source)
	assert.Equal(t, "p1", hits[0].Ref)

	// now served from storage without another fetch
	source, _, err = Resolve(ctx, f.strategies(fetcher), Subject{Candidate: c}, "robots", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "stored", source)
	assert.Equal(t, 1, fetcher.calls)
}

func TestResolve_SkipsUnavailableSocialAPI(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.candidate(t, "Ada", "ada")
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: 503", core.ErrCollaboratorUnavailable)}

	source, hits, err := Resolve(ctx, f.strategies(fetcher), Subject{Candidate: c, InlineTexts: []string{"robots"}}, "robots", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", source)
	assert.Len(t, hits, 1)

	_, _, err = Resolve(ctx, f.strategies(fetcher), Subject{Candidate: c}, "robots", 0, nil)
	assert.ErrorIs(t, err, ErrNoCorpus)
}

func TestResolve_OtherErrorsStop(t *testing.T) {
	f := newFixture(t)
	c := f.candidate(t, "Ada", "ada")
	boom := errors.New("decode failure")

	_, _, err := Resolve(context.Background(), f.strategies(&fakeFetcher{err: boom}), Subject{Candidate: c, InlineTexts: []string{"x"}}, "x", 0, nil)
	assert.ErrorIs(t, err, boom)
}

func TestResolve_HandleWithoutCandidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fetcher := &fakeFetcher{posts: posts("sunny day", "robots are fun")}

	source, hits, err := Resolve(ctx, f.strategies(fetcher), Subject{Handle: "ada"}, "robots", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "social", source)
	require.Len(t, hits, 1)
	assert.Equal(t, "p2", hits[0].Ref)
	assert.Equal(t, "ada", fetcher.handle)

	// ranked in memory only
	records, err := f.store.Embeddings.GetEmbeddings(ctx, hits[0].ID, core.EmbeddingKindPost)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestChatter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.candidate(t, "Ada Lovelace", "")
	_, err := f.pipeline.Ingest(ctx, c.Id, posts("analytical engines are the future", "poetical science"))
	require.NoError(t, err)

	chat := mock.NewMockChatCompleter()
	chatter, err := NewChatter(f.store.Candidates, chat, f.strategies(nil), nil)
	require.NoError(t, err)

	answer, err := chatter.Chat(ctx, ChatRequest{CandidateID: c.Id, Message: "what about engines?", K: 1})
	require.NoError(t, err)
	assert.Equal(t, "stored", answer.Source)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "p1", answer.Citations[0].PostID)

	msgs := chat.LastMessages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "You are Ada Lovelace")
	assert.Contains(t, msgs[0].Content, "Affiliation: MIT")
	assert.Contains(t, msgs[1].Content, "[1] analytical engines are the future")
	assert.Equal(t, "echo: "+msgs[1].Content, answer.Text)
}

func TestChatter_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.candidate(t, "Ada", "")
	chatter, err := NewChatter(f.store.Candidates, mock.NewMockChatCompleter(), f.strategies(nil), nil)
	require.NoError(t, err)

	_, err = chatter.Chat(ctx, ChatRequest{CandidateID: c.Id, Message: "   "})
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = chatter.Chat(ctx, ChatRequest{CandidateID: 12345, Message: "hi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = chatter.Chat(ctx, ChatRequest{CandidateID: c.Id, Message: "hi"})
	assert.ErrorIs(t, err, ErrNoCorpus)
}

func TestNewChatter_RequiresCompleter(t *testing.T) {
	f := newFixture(t)
	_, err := NewChatter(f.store.Candidates, nil, f.strategies(nil), nil)
	assert.ErrorIs(t, err, ErrChatCompleterRequired)

	_, err = NewChatter(nil, mock.NewMockChatCompleter(), f.strategies(nil), nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestChatter_ChatHandle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chat := mock.NewMockChatCompleter()
	fetcher := &fakeFetcher{posts: posts("sunny day", "robots are fun")}
	chatter, err := NewChatter(f.store.Candidates, chat, f.strategies(fetcher), nil)
	require.NoError(t, err)

	answer, err := chatter.ChatHandle(ctx, HandleChatRequest{Handle: " @ada ", Message: "robots?", K: 1})
	require.NoError(t, err)
	assert.Equal(t, "ada", fetcher.handle)
	assert.Equal(t, "social", answer.Source)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "p2", answer.Citations[0].PostID)

	msgs := chat.LastMessages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "You are @ada")
	assert.Contains(t, msgs[1].Content, "[1] robots are fun")
}

func TestChatter_ChatHandleDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chatter, err := NewChatter(f.store.Candidates, mock.NewMockChatCompleter(), f.strategies(nil), nil)
	require.NoError(t, err)

	answer, err := chatter.ChatHandle(ctx, HandleChatRequest{
		Handle:   "ada",
		Message:  "robots",
		K:        1,
		Document: "coffee first\n\nrobots rule",
	})
	require.NoError(t, err)
	assert.Equal(t, "inline", answer.Source)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "line_3", answer.Citations[0].PostID)

	// texts win over the document
	answer, err = chatter.ChatHandle(ctx, HandleChatRequest{
		Handle:   "ada",
		Message:  "robots",
		Texts:    []string{"robots everywhere"},
		Document: "robots rule",
	})
	require.NoError(t, err)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "robots everywhere", answer.Citations[0].Text)
}

func TestChatter_ChatHandleInsufficientData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	chat := mock.NewMockChatCompleter()
	chatter, err := NewChatter(f.store.Candidates, chat, f.strategies(&fakeFetcher{}), nil)
	require.NoError(t, err)

	answer, err := chatter.ChatHandle(ctx, HandleChatRequest{Handle: "ghost", Message: "hello?"})
	require.NoError(t, err)
	assert.Equal(t, InsufficientDataAnswer, answer.Text)
	assert.Empty(t, answer.Source)
	assert.NotNil(t, answer.Citations)
	assert.Empty(t, answer.Citations)
	assert.Zero(t, chat.CallCount())

	_, err = chatter.ChatHandle(ctx, HandleChatRequest{Handle: "@", Message: "hello?"})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.ErrorIs(t, err, ErrHandleRequired)

	_, err = chatter.ChatHandle(ctx, HandleChatRequest{Handle: "ghost", Message: " "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
