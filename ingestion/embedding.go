package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// embeddingProcessor embeds posts and persists the vectors.
type embeddingProcessor struct {
	embeddingRepository storage.EmbeddingRepository
	embedder            ai.Embedder
	logger              *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(embeddingRepository storage.EmbeddingRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if embeddingRepository == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embeddingRepository: embeddingRepository,
		embedder:            embedder,
		logger:              logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the given posts and stores one record per post.
func (ep *embeddingProcessor) process(ctx context.Context, posts ...*core.SocialPost) error {
	if len(posts) == 0 {
		return nil
	}
	ep.logger.Debug("generating embeddings for posts", "posts", len(posts))

	texts := make([]string, len(posts))
	for i, post := range posts {
		texts[i] = post.Text
	}

	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}
	if len(embeddings) != len(posts) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(posts), len(embeddings))
	}

	records := make([]*core.EmbeddingRecord, len(posts))
	for i, post := range posts {
		records[i] = &core.EmbeddingRecord{
			OwnerID: post.CandidateID,
			Kind:    core.EmbeddingKindPost,
			RefID:   post.Id,
			Model:   ep.embedder.Model(),
			Dim:     len(embeddings[i]),
			Vector:  embeddings[i],
		}
	}
	return ep.embeddingRepository.SaveEmbeddings(ctx, records...)
}
