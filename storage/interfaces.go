package storage

import (
	"context"

	"github.com/poiesic/talentscout/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository (ID sequences and the like).
	// It does not close the shared backend.
	Close() error
}

// JobRepository persists search jobs and their lifecycle.
type JobRepository interface {
	Repository
	// CreateJob stores a new job in PENDING state with progress 0.
	// Generates an ID when job.ID is empty. Returns the stored job.
	CreateJob(ctx context.Context, job *core.Job) (*core.Job, error)

	// GetJob retrieves a job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id core.JobID) (*core.Job, error)

	// UpdateJobStatus moves a job to status with the given progress and error message.
	// The transition is validated against the stored status; illegal moves
	// return core.ErrInvalidTransition and leave the job untouched.
	UpdateJobStatus(ctx context.Context, id core.JobID, status core.JobStatus, progress int, message string) (*core.Job, error)
}

// AffiliationEvidence is one observation that a candidate was at an org in a year.
type AffiliationEvidence struct {
	OrgName string
	Year    int
}

// CandidateBundle is everything written for one enriched candidate.
// It is persisted as a single unit.
type CandidateBundle struct {
	Candidate    *core.Candidate
	Publications []*core.Publication
	Affiliations []AffiliationEvidence
	Summary      *core.AnalysisSummary
}

// ScoredCandidate pairs a candidate with its analysis.
type ScoredCandidate struct {
	Candidate *core.Candidate
	Summary   *core.AnalysisSummary
}

// CandidateRepository persists candidates and their derived records.
type CandidateRepository interface {
	Repository
	// SaveCandidateBundle writes candidate, publications, affiliation upserts
	// and analysis summary in one transaction, assigning IDs.
	SaveCandidateBundle(ctx context.Context, bundle *CandidateBundle) error

	// UpsertAffiliationYear inserts (candidate, year, org) with evidence 1 or
	// increments the evidence count of the existing row.
	UpsertAffiliationYear(ctx context.Context, candidateID core.ID, orgName string, year int) (*core.AffiliationYear, error)

	// GetCandidate retrieves a candidate by ID.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error)

	// SetSocialHandle records the candidate's social handle, replacing any previous one.
	// Returns ErrNotFound if the candidate doesn't exist.
	SetSocialHandle(ctx context.Context, id core.ID, handle string) (*core.Candidate, error)

	// GetPublications returns a candidate's publications ordered by citations, highest first.
	GetPublications(ctx context.Context, candidateID core.ID) ([]*core.Publication, error)

	// GetAffiliations returns a candidate's affiliation rows ordered by year then org.
	GetAffiliations(ctx context.Context, candidateID core.ID) ([]*core.AffiliationYear, error)

	// GetLatestSummary returns the most recent analysis of a candidate.
	// Returns ErrNotFound if the candidate was never analysed.
	GetLatestSummary(ctx context.Context, candidateID core.ID) (*core.AnalysisSummary, error)

	// TopCandidates returns up to limit candidates of a job ordered by total score, highest first.
	// Equal scores keep insertion order.
	TopCandidates(ctx context.Context, jobID core.JobID, limit int) ([]*ScoredCandidate, error)
}

// PostRepository persists social posts.
type PostRepository interface {
	Repository
	// AddPosts stores posts for a candidate, skipping any whose PostID is already stored.
	// Returns only the newly stored posts with IDs populated.
	AddPosts(ctx context.Context, candidateID core.ID, posts ...*core.SocialPost) ([]*core.SocialPost, error)

	// GetPosts returns a candidate's posts in insertion order.
	GetPosts(ctx context.Context, candidateID core.ID) ([]*core.SocialPost, error)

	// AllPosts returns every stored post in insertion order per candidate.
	AllPosts(ctx context.Context) ([]*core.SocialPost, error)
}

// EmbeddingRepository persists embedding vectors.
type EmbeddingRepository interface {
	Repository
	// SaveEmbeddings inserts records, replacing any existing record with the
	// same (owner, kind, ref). Records failing core.ValidateEmbeddingRecord are rejected.
	SaveEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error

	// GetEmbeddings returns an owner's records of a kind ordered by ref.
	GetEmbeddings(ctx context.Context, ownerID core.ID, kind core.EmbeddingKind) ([]*core.EmbeddingRecord, error)
}
