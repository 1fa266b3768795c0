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

// Package talentscout searches for researchers matching a query, ranks them
// and answers questions about them from their own posts.
//
// Service wires storage, the AI provider, the job orchestrator, post
// ingestion and retrieval together. It is the entry point used by the CLI
// and the HTTP server.
package talentscout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/talentscout/ai"
	"github.com/poiesic/talentscout/ai/openai"
	"github.com/poiesic/talentscout/config"
	"github.com/poiesic/talentscout/connectors/openalex"
	"github.com/poiesic/talentscout/connectors/xapi"
	"github.com/poiesic/talentscout/events"
	"github.com/poiesic/talentscout/ingestion"
	"github.com/poiesic/talentscout/orchestrator"
	"github.com/poiesic/talentscout/reembed"
	"github.com/poiesic/talentscout/retrieval"
	"github.com/poiesic/talentscout/storage/badger"
)

// Service is the application facade. Create it with New and release it with
// Close.
type Service struct {
	store        *badger.Store
	provider     ai.AIProvider
	registry     *events.Registry
	orchestrator *orchestrator.Orchestrator
	pipeline     *ingestion.Pipeline
	retrieval    *retrieval.Service
	chatter      *retrieval.Chatter
	fetcher      retrieval.PostFetcher
	streamIdle   time.Duration
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	discoverer orchestrator.Discoverer
	fetcher    retrieval.PostFetcher
	poolSize   int
	streamIdle time.Duration
	inMemory   bool
	now        func() time.Time
	logger     *slog.Logger
}

// WithAIConfig sets the configuration of the default AI provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithAIProvider replaces the AI provider. The service closes it.
func WithAIProvider(p ai.AIProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithDiscoverer replaces the scholarly source. Default is OpenAlex.
func WithDiscoverer(d orchestrator.Discoverer) Option {
	return func(o *options) {
		o.discoverer = d
	}
}

// WithPostFetcher sets the social source consulted when a candidate has no
// stored posts. Without one that retrieval step is skipped.
func WithPostFetcher(f retrieval.PostFetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithPoolSize sets how many search jobs run at once.
func WithPoolSize(n int) Option {
	return func(o *options) {
		o.poolSize = n
	}
}

// WithStreamIdle sets the keep-alive interval of event streams.
func WithStreamIdle(d time.Duration) Option {
	return func(o *options) {
		o.streamIdle = d
	}
}

// WithInMemory keeps all data in memory. The path passed to New is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithClock overrides the time source used for scoring.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New opens the database at path and builds every component.
func New(path string, opts ...Option) (*Service, error) {
	o := &options{
		aiConfig:   ai.DefaultConfig(),
		poolSize:   orchestrator.DefaultPoolSize,
		streamIdle: events.DefaultIdleWindow,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.discoverer == nil {
		o.discoverer = openalex.NewClient(openalex.DefaultBaseURL, nil, o.logger)
	}

	backend, err := badger.OpenBackendWithLogger(path, o.inMemory, o.logger)
	if err != nil {
		return nil, err
	}
	store, err := badger.OpenStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		if provider, err = openai.NewProvider(o.aiConfig); err != nil {
			store.Close()
			return nil, err
		}
	}

	s := &Service{
		store:      store,
		provider:   provider,
		registry:   events.NewRegistry(o.logger),
		fetcher:    o.fetcher,
		streamIdle: o.streamIdle,
		logger:     o.logger,
	}
	if err := s.wire(o); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) wire(o *options) error {
	embedder := s.provider.Embedder()
	var err error

	s.orchestrator, err = orchestrator.New(
		s.store.Jobs, s.store.Candidates, o.discoverer,
		s.provider.TopicExtractor(), embedder, s.registry,
		orchestrator.WithEmbeddingRepository(s.store.Embeddings),
		orchestrator.WithPoolSize(o.poolSize),
		orchestrator.WithClock(o.now),
		orchestrator.WithLogger(o.logger),
	)
	if err != nil {
		return err
	}

	s.pipeline, err = ingestion.NewPipeline(s.store.Posts, s.store.Embeddings, embedder, ingestion.WithLogger(o.logger))
	if err != nil {
		return err
	}

	s.retrieval, err = retrieval.NewService(s.store.Posts, s.store.Embeddings, embedder, o.logger)
	if err != nil {
		return err
	}

	strategies := []retrieval.Strategy{retrieval.StoredPosts{Service: s.retrieval}}
	if s.fetcher != nil {
		strategies = append(strategies, retrieval.SocialAPI{Service: s.retrieval, Fetcher: s.fetcher, Ingester: s.pipeline})
	}
	strategies = append(strategies, retrieval.InlineTexts{Service: s.retrieval})

	s.chatter, err = retrieval.NewChatter(s.store.Candidates, s.provider.ChatCompleter(), strategies, o.logger)
	return err
}

// Open builds a Service from loaded configuration. opts are applied after
// the configured values.
func Open(cfg *config.Config, opts ...Option) (*Service, error) {
	base := []Option{
		WithAIConfig(cfg.AIConfig()),
		WithDiscoverer(openalex.NewClient(cfg.OpenAlex.BaseURL, nil, nil)),
		WithPoolSize(cfg.PoolSize),
		WithStreamIdle(cfg.StreamIdle),
	}
	if x := xapi.NewClient(cfg.XConfig(), nil, nil); x.Enabled() {
		base = append(base, WithPostFetcher(x))
	}
	return New(cfg.Database, append(base, opts...)...)
}

// Reembed recomputes every post embedding with the current embedder.
// Progress lines go to progress; nil discards them.
func (s *Service) Reembed(ctx context.Context, cfg *reembed.Config, progress io.Writer) (*reembed.Stats, error) {
	r, err := reembed.NewReembedder(s.store.Posts, s.store.Embeddings, s.provider.Embedder(), cfg, progress)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}

// Close stops running jobs and releases every resource. Jobs still running
// are cancelled and end in ERROR.
func (s *Service) Close() error {
	var errs []error
	if s.orchestrator != nil {
		errs = append(errs, s.orchestrator.Close())
	}
	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
