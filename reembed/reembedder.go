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

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of posts embedded per call
	BatchSize int

	// ReportInterval is how often to report progress (number of posts)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Stats summarizes a finished run.
type Stats struct {
	Posts   int
	Model   string
	Elapsed time.Duration
}

// Reembedder recomputes every post embedding in a database.
type Reembedder struct {
	posts     storage.PostRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *PostIterator
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(
	posts storage.PostRepository,
	embeddings storage.EmbeddingRepository,
	embedder ai.Embedder,
	config *Config,
	progress io.Writer,
) (*Reembedder, error) {
	switch {
	case posts == nil:
		return nil, ErrPostRepositoryRequired
	case embeddings == nil:
		return nil, ErrEmbeddingRepositoryRequired
	case embedder == nil:
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		posts:     posts,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(embeddings, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewPostIterator(posts, config.BatchSize),
		logger:    slog.Default().With("component", "reembed"),
	}, nil
}

// Run reembeds every stored post.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	all, err := r.posts.AllPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	stats := &Stats{Posts: len(all), Model: r.embedder.Model()}
	if len(all) == 0 {
		fmt.Fprintf(r.progress, "No posts found in database (0 posts)\n")
		return stats, nil
	}

	fmt.Fprintf(r.progress, "Reembedding %d posts with %s (batch size: %d)\n",
		len(all), stats.Model, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(all), r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(posts []*core.SocialPost) error {
		if err := r.processor.Process(ctx, posts); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		processed += len(posts)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding aborted", "processed", processed, "err", err)
		return nil, err
	}

	tracker.Finish()
	stats.Elapsed = tracker.Elapsed()
	r.logger.Info("reembedding complete", "posts", stats.Posts, "model", stats.Model, "elapsed", stats.Elapsed)
	return stats, nil
}
