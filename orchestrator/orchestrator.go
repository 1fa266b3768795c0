package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/events"
	"github.com/poiesic/talentscout/storage"
)

// DefaultPoolSize is the number of jobs that may run at once.
const DefaultPoolSize = 8

// Discoverer finds authors and their works at a scholarly source.
type Discoverer interface {
	DiscoverAuthors(ctx context.Context, query string, limit int) ([]core.Author, error)
	FetchTopWorks(ctx context.Context, authorID string, perPage int) ([]core.Work, error)
}

// Orchestrator accepts search jobs and runs them in the background.
type Orchestrator struct {
	jobs       storage.JobRepository
	candidates storage.CandidateRepository
	embeddings storage.EmbeddingRepository
	discoverer Discoverer
	topics     ai.TopicExtractor
	embedder   ai.Embedder
	registry   *events.Registry
	pool       *ants.Pool
	logger     *slog.Logger
	now        func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets how many jobs run concurrently.
// Default is DefaultPoolSize.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if o.pool != nil {
			o.pool.Release()
		}
		o.pool = pool
		return nil
	}
}

// WithEmbeddingRepository stores each candidate's profile embedding.
func WithEmbeddingRepository(repo storage.EmbeddingRepository) Option {
	return func(o *Orchestrator) error {
		o.embeddings = repo
		return nil
	}
}

// WithClock overrides the time source used for recency and seniority.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) error {
		if now != nil {
			o.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an orchestrator.
func New(
	jobs storage.JobRepository,
	candidates storage.CandidateRepository,
	discoverer Discoverer,
	topics ai.TopicExtractor,
	embedder ai.Embedder,
	registry *events.Registry,
	opts ...Option,
) (*Orchestrator, error) {
	switch {
	case jobs == nil:
		return nil, ErrJobRepositoryRequired
	case candidates == nil:
		return nil, ErrCandidateRepositoryRequired
	case discoverer == nil:
		return nil, ErrDiscovererRequired
	case topics == nil:
		return nil, ErrTopicExtractorRequired
	case embedder == nil:
		return nil, ErrEmbedderRequired
	case registry == nil:
		return nil, ErrRegistryRequired
	}

	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		jobs:       jobs,
		candidates: candidates,
		discoverer: discoverer,
		topics:     topics,
		embedder:   embedder,
		registry:   registry,
		pool:       pool,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.pool.Release()
			return nil, optErr
		}
	}
	o.logger = o.logger.With("component", "orchestrator")
	o.ctx, o.cancel = context.WithCancel(context.Background())
	return o, nil
}

// Submit validates and stores a new PENDING job, then schedules it.
// The job keeps running after ctx is done; Close stops it.
func (o *Orchestrator) Submit(ctx context.Context, query, jobDescription string, filters core.Filters) (*core.Job, error) {
	if err := core.ValidateFilters(filters); err != nil {
		return nil, err
	}
	if o.ctx.Err() != nil {
		return nil, ErrClosed
	}
	job, err := o.jobs.CreateJob(ctx, &core.Job{
		Query:          query,
		JobDescription: jobDescription,
		Filters:        filters,
	})
	if err != nil {
		return nil, err
	}

	running := *job
	o.wg.Add(1)
	err = o.pool.Submit(func() {
		defer o.wg.Done()
		o.Run(o.ctx, &running)
	})
	if err != nil {
		o.wg.Done()
		o.fail(ctx, &running, fmt.Errorf("schedule job: %w", err))
		return nil, err
	}
	o.logger.Info("job submitted", "job", job.ID, "query", query)
	return job, nil
}

// Wait blocks until every submitted job has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels running jobs, waits for them and releases the pool.
// It is safe to call more than once.
func (o *Orchestrator) Close() error {
	o.closeOnce.Do(func() {
		o.cancel()
		o.wg.Wait()
		o.pool.Release()
	})
	return nil
}

func (o *Orchestrator) publish(jobID core.JobID, event events.Event) {
	if err := o.registry.Publish(jobID, event); err != nil {
		o.logger.Error("error publishing event", "job", jobID, "type", event.Type, "err", err)
	}
}

// fail moves the job to ERROR and emits an error event.
func (o *Orchestrator) fail(ctx context.Context, job *core.Job, cause error) {
	o.logger.Error("job failed", "job", job.ID, "err", cause)
	// The status write must happen even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	if job.Status == core.JobPending {
		// ERROR is only reachable from RUNNING.
		if _, err := o.jobs.UpdateJobStatus(ctx, job.ID, core.JobRunning, job.Progress, ""); err != nil {
			o.logger.Error("error starting failed job", "job", job.ID, "err", err)
		}
	}
	if _, err := o.jobs.UpdateJobStatus(ctx, job.ID, core.JobError, job.Progress, cause.Error()); err != nil {
		o.logger.Error("error recording job failure", "job", job.ID, "err", err)
	}
	job.Status = core.JobError
	job.Error = cause.Error()
	o.publish(job.ID, events.Failed(cause.Error()))
}
