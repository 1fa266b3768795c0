package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// MaxInlineTexts caps the size of a transient corpus.
const MaxInlineTexts = 2000

// Service retrieves posts by similarity to a query.
type Service struct {
	posts      storage.PostRepository
	embeddings storage.EmbeddingRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// NewService creates a retrieval service.
func NewService(posts storage.PostRepository, embeddings storage.EmbeddingRepository, embedder ai.Embedder, logger *slog.Logger) (*Service, error) {
	if posts == nil || embeddings == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		posts:      posts,
		embeddings: embeddings,
		embedder:   embedder,
		logger:     logger.With("component", "retrieval"),
	}, nil
}

// Retrieve ranks an owner's persisted post embeddings against queryText.
// Records whose dimension differs from the current embedder's are skipped.
func (s *Service) Retrieve(ctx context.Context, ownerID core.ID, queryText string, k int) ([]Hit, error) {
	records, err := s.embeddings.GetEmbeddings(ctx, ownerID, core.EmbeddingKindPost)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []Hit{}, nil
	}
	posts, err := s.posts.GetPosts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byID := make(map[core.ID]*core.SocialPost, len(posts))
	for _, p := range posts {
		byID[p.Id] = p
	}

	query, err := s.embedder.EmbedText(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	items := make([]Item, 0, len(records))
	skipped := 0
	for _, rec := range records {
		post, ok := byID[rec.RefID]
		if !ok || rec.Dim != len(query) {
			skipped++
			continue
		}
		items = append(items, Item{
			ID:        post.Id,
			Ref:       post.PostID,
			Text:      post.Text,
			CreatedAt: post.CreatedAt,
			Vector:    rec.Vector,
		})
	}
	if skipped > 0 {
		s.logger.Warn("skipped post embeddings", "owner", ownerID, "skipped", skipped, "dim", len(query))
	}
	return TopK(items, query, k)
}

// RetrieveInline ranks a transient corpus against queryText. Nothing is
// persisted. Blank texts are ignored and at most MaxInlineTexts are used.
func (s *Service) RetrieveInline(ctx context.Context, texts []string, queryText string, k int) ([]Hit, error) {
	items := make([]Item, 0, min(len(texts), MaxInlineTexts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		items = append(items, Item{ID: core.IDFromContent(t), Ref: fmt.Sprintf("line_%d", i+1), Text: t})
		if len(items) == MaxInlineTexts {
			break
		}
	}
	return s.rankTransient(ctx, items, queryText, k)
}

// RetrievePosts ranks posts that have not been stored, keeping their
// platform ids and timestamps on the hits.
func (s *Service) RetrievePosts(ctx context.Context, posts []*core.SocialPost, queryText string, k int) ([]Hit, error) {
	items := make([]Item, 0, min(len(posts), MaxInlineTexts))
	for _, p := range posts {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		items = append(items, Item{ID: core.IDFromContent(text), Ref: p.PostID, Text: text, CreatedAt: p.CreatedAt})
		if len(items) == MaxInlineTexts {
			break
		}
	}
	return s.rankTransient(ctx, items, queryText, k)
}

func (s *Service) rankTransient(ctx context.Context, items []Item, queryText string, k int) ([]Hit, error) {
	if len(items) == 0 {
		return []Hit{}, nil
	}

	corpus := make([]string, len(items)+1)
	for i, item := range items {
		corpus[i] = item.Text
	}
	corpus[len(items)] = queryText
	vectors, err := s.embedder.EmbedTexts(ctx, corpus)
	if err != nil {
		return nil, fmt.Errorf("embedding inline corpus: %w", err)
	}
	if len(vectors) != len(corpus) {
		return nil, fmt.Errorf("embedding inline corpus: expected %d vectors, received %d", len(corpus), len(vectors))
	}
	for i := range items {
		items[i].Vector = vectors[i]
	}
	return TopK(items, vectors[len(items)], k)
}
