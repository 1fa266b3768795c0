package talentscout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/talentscout/ai/keywords"
	"github.com/poiesic/talentscout/career"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/ingestion"
	"github.com/poiesic/talentscout/retrieval"
	"github.com/poiesic/talentscout/storage"
)

// MaxDetailPapers is the number of publications shown in a candidate detail.
const MaxDetailPapers = 20

// ErrNoSocialHandle is returned when posts are fetched for a candidate without a handle.
var ErrNoSocialHandle = errors.New("candidate has no social handle")

// Profile is the identity part of a candidate detail.
type Profile struct {
	ID           core.ID    `json:"id"`
	JobID        core.JobID `json:"search_id"`
	Name         string     `json:"name"`
	Affiliation  string     `json:"affiliation"`
	ExternalID   string     `json:"external_id,omitempty"`
	SocialHandle string     `json:"social_handle,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Paper is a publication in a candidate detail.
type Paper struct {
	Title     string `json:"title"`
	Venue     string `json:"venue,omitempty"`
	Year      int    `json:"year,omitempty"`
	Citations int    `json:"citations"`
	WorkRef   string `json:"work_ref,omitempty"`
}

// Analysis is the latest score of a candidate.
type Analysis struct {
	JobID      core.JobID          `json:"search_id"`
	Topics     []string            `json:"topics"`
	TotalScore float64             `json:"total_score"`
	Breakdown  core.ScoreBreakdown `json:"breakdown"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Career is the employment history derived from affiliation evidence.
type Career struct {
	Segments     []career.Segment `json:"segments"`
	Compensation []career.Sample  `json:"compensation"`
}

// CandidateDetail is everything known about one candidate.
type CandidateDetail struct {
	Profile     Profile              `json:"profile"`
	Papers      []Paper              `json:"papers"`
	Analysis    *Analysis            `json:"analysis,omitempty"`
	Career      Career               `json:"career"`
	Personality keywords.Personality `json:"personality"`
}

// Post is a stored social post.
type Post struct {
	PostID      string    `json:"post_id"`
	Source      string    `json:"source"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	LikeCount   int       `json:"like_count"`
	RepostCount int       `json:"repost_count"`
}

// CandidateDetail assembles a candidate's profile, top publications, latest
// analysis, career and a personality sketch from stored posts.
func (s *Service) CandidateDetail(ctx context.Context, id core.ID) (*CandidateDetail, error) {
	cand, err := s.store.Candidates.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &CandidateDetail{
		Profile: Profile{
			ID:           cand.Id,
			JobID:        cand.JobID,
			Name:         cand.Name,
			Affiliation:  cand.Affiliation,
			ExternalID:   cand.ExternalID,
			SocialHandle: cand.SocialHandle,
			CreatedAt:    cand.CreatedAt,
		},
		Papers: []Paper{},
	}

	pubs, err := s.store.Candidates.GetPublications(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range pubs[:min(len(pubs), MaxDetailPapers)] {
		detail.Papers = append(detail.Papers, Paper{
			Title:     p.Title,
			Venue:     p.Venue,
			Year:      p.Year,
			Citations: p.Citations,
			WorkRef:   p.WorkRef,
		})
	}

	sum, err := s.store.Candidates.GetLatestSummary(ctx, id)
	switch {
	case err == nil:
		detail.Analysis = &Analysis{
			JobID:      sum.JobID,
			Topics:     sum.Topics,
			TotalScore: sum.TotalScore,
			Breakdown:  sum.Breakdown,
			CreatedAt:  sum.CreatedAt,
		}
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	rows, err := s.store.Candidates.GetAffiliations(ctx, id)
	if err != nil {
		return nil, err
	}
	segments := career.Segments(rows)
	if segments == nil {
		segments = []career.Segment{}
	}
	detail.Career = Career{Segments: segments, Compensation: career.Samples(rows)}

	posts, err := s.store.Posts.GetPosts(ctx, id)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(posts))
	for i, p := range posts {
		texts[i] = p.Text
	}
	detail.Personality = keywords.SummarizePersonality(texts)
	return detail, nil
}

// SetSocialHandle records the handle used to fetch a candidate's posts.
func (s *Service) SetSocialHandle(ctx context.Context, id core.ID, handle string) (*core.Candidate, error) {
	if strings.TrimPrefix(strings.TrimSpace(handle), "@") == "" {
		return nil, fmt.Errorf("%w: handle required", core.ErrValidation)
	}
	return s.store.Candidates.SetSocialHandle(ctx, id, handle)
}

// Posts returns up to limit of a candidate's stored posts, newest first.
// A non-positive limit returns all of them.
func (s *Service) Posts(ctx context.Context, id core.ID, limit int) ([]Post, error) {
	if _, err := s.store.Candidates.GetCandidate(ctx, id); err != nil {
		return nil, err
	}
	stored, err := s.store.Posts.GetPosts(ctx, id)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(stored, func(a, b *core.SocialPost) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	out := make([]Post, len(stored))
	for i, p := range stored {
		out[i] = Post{
			PostID:      p.PostID,
			Source:      p.Source,
			Text:        p.Text,
			CreatedAt:   p.CreatedAt,
			LikeCount:   p.LikeCount,
			RepostCount: p.RepostCount,
		}
	}
	return out, nil
}

// IngestPosts stores and embeds posts for a candidate. Blank posts are
// dropped; posts already stored are skipped.
func (s *Service) IngestPosts(ctx context.Context, id core.ID, posts []*core.SocialPost) (*ingestion.Result, error) {
	if _, err := s.store.Candidates.GetCandidate(ctx, id); err != nil {
		return nil, err
	}
	kept := make([]*core.SocialPost, 0, len(posts))
	for _, p := range posts {
		if p == nil || strings.TrimSpace(p.Text) == "" {
			continue
		}
		if p.Source == "" {
			p.Source = "manual"
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no posts with text", core.ErrValidation)
	}
	return s.pipeline.Ingest(ctx, id, kept)
}

// FetchPosts pulls the candidate's recent posts from the social source and
// ingests them.
func (s *Service) FetchPosts(ctx context.Context, id core.ID, limit int) (*ingestion.Result, error) {
	cand, err := s.store.Candidates.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}
	if cand.SocialHandle == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, ErrNoSocialHandle)
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: no social source configured", core.ErrCollaboratorUnavailable)
	}
	if limit <= 0 {
		limit = retrieval.DefaultFetchLimit
	}
	posts, err := s.fetcher.FetchPosts(ctx, cand.SocialHandle, limit)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return &ingestion.Result{}, nil
	}
	return s.pipeline.Ingest(ctx, id, posts)
}

// Retrieve ranks a candidate's stored posts against queryText.
func (s *Service) Retrieve(ctx context.Context, ownerID core.ID, queryText string, k int) ([]retrieval.Citation, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("%w: query required", core.ErrValidation)
	}
	if _, err := s.store.Candidates.GetCandidate(ctx, ownerID); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = retrieval.DefaultK
	}
	hits, err := s.retrieval.Retrieve(ctx, ownerID, queryText, k)
	if err != nil {
		return nil, err
	}
	return retrieval.Citations(hits), nil
}

// Chat answers a question in the candidate's voice.
func (s *Service) Chat(ctx context.Context, req retrieval.ChatRequest) (*retrieval.Answer, error) {
	return s.chatter.Chat(ctx, req)
}

// ChatHandle answers a question in the voice of a social account that is
// not a stored candidate.
func (s *Service) ChatHandle(ctx context.Context, req retrieval.HandleChatRequest) (*retrieval.Answer, error) {
	return s.chatter.ChatHandle(ctx, req)
}
