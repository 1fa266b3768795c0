package reembed

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/ai/hashing"
	"github.com/poiesic/talentscout/backoff"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// BatchProcessor embeds batches of posts and stores the vectors.
type BatchProcessor struct {
	repo           storage.EmbeddingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.EmbeddingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds posts and replaces their stored post embeddings.
// Vectors are L2-normalized before they are stored.
func (bp *BatchProcessor) Process(ctx context.Context, posts []*core.SocialPost) error {
	if len(posts) == 0 {
		return nil
	}

	texts := make([]string, len(posts))
	for i, post := range posts {
		texts[i] = post.Text
	}

	var vectors [][]float32
	err := backoff.Retry(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	if len(vectors) != len(posts) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(posts), len(vectors))
	}

	model := bp.embedder.Model()
	now := time.Now().UTC()
	records := make([]*core.EmbeddingRecord, len(posts))
	for i, post := range posts {
		v := slices.Clone(vectors[i])
		hashing.Normalize(v)
		records[i] = &core.EmbeddingRecord{
			OwnerID:   post.CandidateID,
			Kind:      core.EmbeddingKindPost,
			RefID:     post.Id,
			Model:     model,
			Dim:       len(v),
			Vector:    v,
			CreatedAt: now,
		}
	}

	if err := bp.repo.SaveEmbeddings(ctx, records...); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	return nil
}
