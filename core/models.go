package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID identifies stored entities. Values come from storage sequences or
// content hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// JobID is the opaque public handle of a search job.
type JobID string

// NewJobID returns a fresh random job handle.
func NewJobID() JobID {
	return JobID(uuid.NewString())
}

// JobStatus is the lifecycle state of a search job.
type JobStatus int

const (
	// JobPending is the state of a job that has been accepted but not started.
	JobPending JobStatus = iota + 1
	// JobRunning is the state of a job whose pipeline is executing.
	JobRunning
	// JobDone is the terminal state of a job that completed normally.
	JobDone
	// JobError is the terminal state of a job that aborted.
	JobError
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "PENDING"
	case JobRunning:
		return "RUNNING"
	case JobDone:
		return "DONE"
	case JobError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Terminal reports whether no further transitions are allowed.
func (s JobStatus) Terminal() bool {
	return s == JobDone || s == JobError
}

// Filters narrows a search job.
type Filters struct {
	Seniority string `json:"seniority,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Job is a single asynchronous search request.
type Job struct {
	ID             JobID
	Query          string
	JobDescription string
	Filters        Filters
	Status         JobStatus
	Progress       int
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Candidate is a person discovered during a job run. Each run creates new
// candidates; they are never merged across jobs.
type Candidate struct {
	Id           ID
	JobID        JobID
	Name         string
	Affiliation  string
	ExternalID   string // author reference at the scholarly source
	SocialHandle string
	CreatedAt    time.Time
}

// Publication is a scholarly work attributed to a candidate.
type Publication struct {
	Id          ID
	CandidateID ID
	Title       string
	Venue       string
	Year        int // 0 when undated
	Citations   int
	Abstract    string
	WorkRef     string
}

// AffiliationYear records evidence that a candidate was at an organization in a year.
// There is at most one row per (candidate, year, org).
type AffiliationYear struct {
	Id            ID
	CandidateID   ID
	OrgName       string
	Year          int
	EvidenceCount int
}

// Level is the coarse career stage of a candidate.
type Level int

const (
	// LevelUnset means no level was requested.
	LevelUnset Level = iota
	LevelJunior
	LevelMid
	LevelSenior
	LevelPrincipal
	// LevelUnrecognized marks a requested level that did not parse.
	LevelUnrecognized
)

func (l Level) String() string {
	switch l {
	case LevelUnset:
		return ""
	case LevelJunior:
		return "junior"
	case LevelMid:
		return "mid"
	case LevelSenior:
		return "senior"
	case LevelPrincipal:
		return "principal"
	case LevelUnrecognized:
		return "unrecognized"
	}
	return "unrecognized"
}

// ParseLevel maps a free-form level name to a Level. Empty input yields
// LevelUnset, unknown names LevelUnrecognized.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return LevelUnset
	case "junior":
		return LevelJunior
	case "mid":
		return LevelMid
	case "senior":
		return LevelSenior
	case "principal":
		return LevelPrincipal
	}
	return LevelUnrecognized
}

// MarshalText renders the level name in JSON payloads.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText is the inverse of MarshalText. Names it does not know,
// "unrecognized" included, decode to LevelUnrecognized.
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))
	return nil
}

// ScoreWeights are the coefficients of the total score.
type ScoreWeights struct {
	Fit       float64 `json:"fit"`
	Impact    float64 `json:"impact"`
	Recency   float64 `json:"recency"`
	Seniority float64 `json:"seniority"`
}

// ScoreBreakdown keeps every intermediate term of a composite score.
type ScoreBreakdown struct {
	TopicalFit          float64      `json:"topical_fit"`
	EmbeddingSimilarity float64      `json:"embedding_similarity"`
	CompositeFit        float64      `json:"composite_fit"`
	BestCitations       int          `json:"best_citations"`
	HProxy              float64      `json:"h_proxy"`
	Impact              float64      `json:"impact"`
	RecentYear          int          `json:"recent_year"`
	Recency             float64      `json:"recency"`
	Seniority           Level        `json:"seniority"`
	RequestedLevel      Level        `json:"requested_level"`
	SeniorityFit        float64      `json:"seniority_fit"`
	Total               float64      `json:"total"`
	Weights             ScoreWeights `json:"weights"`
}

// AnalysisSummary is the immutable scoring result for one candidate in one job.
type AnalysisSummary struct {
	Id          ID
	CandidateID ID
	JobID       JobID
	Topics      []string
	Breakdown   ScoreBreakdown
	TotalScore  float64
	CreatedAt   time.Time
}

// EmbeddingKind names what an embedding record was computed from.
type EmbeddingKind string

const (
	// EmbeddingKindPost is the embedding of a social post.
	EmbeddingKindPost EmbeddingKind = "post"
	// EmbeddingKindProfile is the embedding of a candidate's concatenated publications.
	EmbeddingKindProfile EmbeddingKind = "profile"
)

// EmbeddingRecord is a persisted vector. len(Vector) == Dim always holds.
type EmbeddingRecord struct {
	Id        ID
	OwnerID   ID
	Kind      EmbeddingKind
	RefID     ID
	Model     string
	Dim       int
	Vector    []float32
	CreatedAt time.Time
}

// SocialPost is a short text a candidate published on a social platform.
type SocialPost struct {
	Id          ID
	CandidateID ID
	Source      string
	PostID      string
	Text        string
	CreatedAt   time.Time
	LikeCount   int
	RepostCount int
}

// Author is a discovery result from a scholarly source.
type Author struct {
	ExternalID   string
	Name         string
	Affiliation  string
	WorksCount   int
	CitedByCount int
}

// Work is a publication as returned by a scholarly source, before persistence.
type Work struct {
	Title     string
	Venue     string
	Year      int
	Citations int
	Abstract  string
	Ref       string
	Orgs      []string // institutions of the author at publication time
}
