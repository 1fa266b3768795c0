package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// DefaultBatchSize is the number of posts embedded per pool task.
const DefaultBatchSize = 32

// Pipeline orchestrates the ingestion and indexing of social posts.
type Pipeline struct {
	postRepository      storage.PostRepository
	embeddingRepository storage.EmbeddingRepository
	embeddingPool       *ants.Pool
	embeddingProc       *embeddingProcessor
	batchSize           int
	logger              *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithBatchSize sets how many posts are embedded together.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	postRepository storage.PostRepository,
	embeddingRepository storage.EmbeddingRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if postRepository == nil {
		return nil, ErrPostRepositoryRequired
	}

	poolSize := max(1, runtime.NumCPU()/2)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		postRepository:      postRepository,
		embeddingRepository: embeddingRepository,
		embeddingPool:       pool,
		batchSize:           DefaultBatchSize,
		logger:              slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	proc, err := newEmbeddingProcessor(embeddingRepository, embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = proc

	return p, nil
}

// Result reports what an Ingest call changed.
type Result struct {
	Received int
	Added    int
}

// Ingest stores posts for a candidate and embeds every stored post that has
// no vector yet, which picks up posts left unembedded by an earlier failed
// call. Posts whose platform id is already stored are not added again. A post
// without a platform id gets one derived from its text.
func (p *Pipeline) Ingest(ctx context.Context, candidateID core.ID, posts []*core.SocialPost) (*Result, error) {
	for _, post := range posts {
		if post.PostID == "" {
			post.PostID = "inline-" + strconv.FormatUint(uint64(core.IDFromContent(post.Text)), 16)
		}
		if post.CreatedAt.IsZero() {
			post.CreatedAt = time.Now().UTC()
		}
	}

	added, err := p.postRepository.AddPosts(ctx, candidateID, posts...)
	if err != nil {
		return nil, err
	}
	result := &Result{Received: len(posts), Added: len(added)}

	pending, err := p.unembedded(ctx, candidateID)
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for start := 0; start < len(pending); start += p.batchSize {
		batch := pending[start:min(start+p.batchSize, len(pending))]
		wg.Add(1)
		submitErr := p.embeddingPool.Submit(func() {
			defer wg.Done()
			if err := p.embeddingProc.process(ctx, batch...); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, submitErr)
			mu.Unlock()
			break
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		p.logger.Error("error embedding posts", "candidate", candidateID, "err", err)
		return result, err
	}
	p.logger.Info("ingested posts", "candidate", candidateID, "received", result.Received, "added", result.Added, "embedded", len(pending))
	return result, nil
}

// unembedded returns the candidate's stored posts without a post vector.
func (p *Pipeline) unembedded(ctx context.Context, candidateID core.ID) ([]*core.SocialPost, error) {
	stored, err := p.postRepository.GetPosts(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	records, err := p.embeddingRepository.GetEmbeddings(ctx, candidateID, core.EmbeddingKindPost)
	if err != nil {
		return nil, err
	}
	embedded := make(map[core.ID]struct{}, len(records))
	for _, r := range records {
		embedded[r.RefID] = struct{}{}
	}
	var pending []*core.SocialPost
	for _, post := range stored {
		if _, ok := embedded[post.Id]; !ok {
			pending = append(pending, post)
		}
	}
	return pending, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
