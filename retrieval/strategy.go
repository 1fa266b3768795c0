package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/ingestion"
)

// Subject is what a strategy retrieves for. Handle names a social account
// with no stored candidate behind it and is only read when Candidate is nil.
type Subject struct {
	Candidate   *core.Candidate
	Handle      string
	InlineTexts []string
}

// Strategy produces retrieval hits from one kind of corpus. It returns no
// hits, not an error, when its corpus is unavailable for the subject.
type Strategy interface {
	Name() string
	Retrieve(ctx context.Context, subject Subject, query string, k int) ([]Hit, error)
}

// Default hit counts when the caller does not ask for a specific k.
const (
	DefaultK       = 8
	DefaultInlineK = 12
)

func orDefault(k, def int) int {
	if k <= 0 {
		return def
	}
	return k
}

// StoredPosts retrieves from posts already ingested for the candidate.
type StoredPosts struct {
	Service *Service
}

func (StoredPosts) Name() string { return "stored" }

func (s StoredPosts) Retrieve(ctx context.Context, subject Subject, query string, k int) ([]Hit, error) {
	if subject.Candidate == nil {
		return nil, nil
	}
	return s.Service.Retrieve(ctx, subject.Candidate.Id, query, orDefault(k, DefaultK))
}

// PostFetcher loads recent posts for a social handle.
type PostFetcher interface {
	FetchPosts(ctx context.Context, handle string, limit int) ([]*core.SocialPost, error)
}

// PostIngester persists and indexes posts.
type PostIngester interface {
	Ingest(ctx context.Context, candidateID core.ID, posts []*core.SocialPost) (*ingestion.Result, error)
}

// DefaultFetchLimit is how many posts SocialAPI pulls per candidate.
const DefaultFetchLimit = 200

// SocialAPI fetches the candidate's posts from the platform, ingests them
// and retrieves from the stored result. For a bare handle the fetched posts
// are ranked in memory and nothing is stored.
type SocialAPI struct {
	Service  *Service
	Fetcher  PostFetcher
	Ingester PostIngester
	Limit    int
}

func (SocialAPI) Name() string { return "social" }

func (s SocialAPI) Retrieve(ctx context.Context, subject Subject, query string, k int) ([]Hit, error) {
	if s.Fetcher == nil {
		return nil, nil
	}
	if subject.Candidate == nil {
		return s.retrieveHandle(ctx, subject.Handle, query, k)
	}
	if subject.Candidate.SocialHandle == "" {
		return nil, nil
	}
	posts, err := s.Fetcher.FetchPosts(ctx, subject.Candidate.SocialHandle, orDefault(s.Limit, DefaultFetchLimit))
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	if _, err := s.Ingester.Ingest(ctx, subject.Candidate.Id, posts); err != nil {
		return nil, err
	}
	return s.Service.Retrieve(ctx, subject.Candidate.Id, query, orDefault(k, DefaultK))
}

func (s SocialAPI) retrieveHandle(ctx context.Context, handle, query string, k int) ([]Hit, error) {
	if handle == "" {
		return nil, nil
	}
	posts, err := s.Fetcher.FetchPosts(ctx, handle, orDefault(s.Limit, DefaultFetchLimit))
	if err != nil {
		return nil, err
	}
	return s.Service.RetrievePosts(ctx, posts, query, orDefault(k, DefaultInlineK))
}

// InlineTexts retrieves from texts supplied with the request.
type InlineTexts struct {
	Service *Service
}

func (InlineTexts) Name() string { return "inline" }

func (s InlineTexts) Retrieve(ctx context.Context, subject Subject, query string, k int) ([]Hit, error) {
	if len(subject.InlineTexts) == 0 {
		return nil, nil
	}
	return s.Service.RetrieveInline(ctx, subject.InlineTexts, query, orDefault(k, DefaultInlineK))
}

// Resolve runs strategies in order and returns the first non-empty result
// with the name of the strategy that produced it. A strategy failing with
// core.ErrCollaboratorUnavailable is skipped; any other error stops the
// chain.
func Resolve(ctx context.Context, strategies []Strategy, subject Subject, query string, k int, logger *slog.Logger) (string, []Hit, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, st := range strategies {
		hits, err := st.Retrieve(ctx, subject, query, k)
		if err != nil {
			if errors.Is(err, core.ErrCollaboratorUnavailable) {
				logger.Warn("retrieval strategy unavailable", "strategy", st.Name(), "err", err)
				continue
			}
			return "", nil, err
		}
		if len(hits) > 0 {
			return st.Name(), hits, nil
		}
	}
	return "", nil, ErrNoCorpus
}
