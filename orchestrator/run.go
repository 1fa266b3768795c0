package orchestrator

import (
	"context"
	"math"
	"strings"

	"github.com/poiesic/talentscout/ai/hashing"
	"github.com/poiesic/talentscout/ai/keywords"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/events"
	"github.com/poiesic/talentscout/scoring"
	"github.com/poiesic/talentscout/storage"
)

const (
	// DefaultQuery is searched when a job has neither query nor description.
	DefaultQuery = "ai researcher"
	// DefaultLimit is the number of authors enriched when filters leave it unset.
	DefaultLimit = 10
	// WorksPerAuthor is the number of top works fetched per author.
	WorksPerAuthor = 10
	// TopicsPerCandidate is the number of topics extracted per candidate.
	TopicsPerCandidate = 8
	// QueryKeywords is the number of keywords taken from the job text.
	QueryKeywords = 12
	// MaxProfileChars bounds the text embedded for a candidate.
	MaxProfileChars = 8000
)

// Run executes a job to completion. Submit calls it on the pool; it is
// exported for callers that want to block on a job.
func (o *Orchestrator) Run(ctx context.Context, job *core.Job) {
	if err := o.run(ctx, job); err != nil {
		o.fail(ctx, job, err)
	}
}

func (o *Orchestrator) setProgress(ctx context.Context, job *core.Job, status core.JobStatus, progress int) error {
	updated, err := o.jobs.UpdateJobStatus(ctx, job.ID, status, progress, "")
	if err != nil {
		return err
	}
	*job = *updated
	o.publish(job.ID, events.Progress(progress))
	return nil
}

func (o *Orchestrator) run(ctx context.Context, job *core.Job) error {
	if err := o.setProgress(ctx, job, core.JobRunning, 1); err != nil {
		return err
	}

	query := discoveryQuery(job)
	limit := job.Filters.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	authors, err := o.discoverer.DiscoverAuthors(ctx, query, limit)
	if err != nil {
		return err
	}
	o.logger.Info("discovered authors", "job", job.ID, "query", query, "count", len(authors))

	if len(authors) > 0 {
		jobText := jobText(job)
		jobVec, err := o.embedder.EmbedText(ctx, jobText)
		if err != nil {
			return err
		}
		queryKeywords := keywords.Top([]string{jobText}, QueryKeywords)
		if len(queryKeywords) == 0 {
			queryKeywords = strings.Fields(job.Query)
		}
		requested := core.ParseLevel(job.Filters.Seniority)

		for i, author := range authors {
			if err := o.enrich(ctx, job, author, jobVec, queryKeywords, requested); err != nil {
				return err
			}
			progress := int(math.Round(5 + 90*float64(i+1)/float64(len(authors))))
			if err := o.setProgress(ctx, job, core.JobRunning, progress); err != nil {
				return err
			}
		}
	}

	updated, err := o.jobs.UpdateJobStatus(ctx, job.ID, core.JobDone, 100, "")
	if err != nil {
		return err
	}
	*job = *updated
	o.publish(job.ID, events.Finished())
	o.logger.Info("job finished", "job", job.ID, "candidates", len(authors))
	return nil
}

// enrich fetches, scores and persists one author.
func (o *Orchestrator) enrich(ctx context.Context, job *core.Job, author core.Author, jobVec []float32, queryKeywords []string, requested core.Level) error {
	works, err := o.discoverer.FetchTopWorks(ctx, author.ExternalID, WorksPerAuthor)
	if err != nil {
		return err
	}

	chunks := make([]string, 0, len(works))
	for _, w := range works {
		chunks = append(chunks, w.Title+"\n"+w.Abstract)
	}
	topics, err := o.topics.ExtractTopics(ctx, chunks, TopicsPerCandidate)
	if err != nil {
		return err
	}

	profileVec, err := o.embedder.EmbedText(ctx, truncate(strings.Join(chunks, "\n\n"), MaxProfileChars))
	if err != nil {
		return err
	}
	similarity, err := hashing.Cosine(profileVec, jobVec)
	if err != nil {
		return err
	}

	currentYear := o.now().Year()
	breakdown := scoring.Score(scoring.Input{
		QueryKeywords:       queryKeywords,
		Topics:              topics,
		EmbeddingSimilarity: similarity,
		BestCitations:       scoring.BestCitations(works),
		WorksCount:          author.WorksCount,
		CitedByCount:        author.CitedByCount,
		RecentYear:          scoring.RecentYear(works),
		YearsActive:         scoring.YearsActive(works, currentYear),
		RequestedLevel:      requested,
		CurrentYear:         currentYear,
	})

	bundle := &storage.CandidateBundle{
		Candidate: &core.Candidate{
			JobID:       job.ID,
			Name:        author.Name,
			Affiliation: author.Affiliation,
			ExternalID:  author.ExternalID,
		},
		Summary: &core.AnalysisSummary{
			Topics:     topics,
			Breakdown:  breakdown,
			TotalScore: breakdown.Total,
		},
	}
	for _, w := range works {
		bundle.Publications = append(bundle.Publications, &core.Publication{
			Title:     w.Title,
			Venue:     w.Venue,
			Year:      w.Year,
			Citations: w.Citations,
			Abstract:  w.Abstract,
			WorkRef:   w.Ref,
		})
		if w.Year <= 0 {
			continue
		}
		for _, org := range w.Orgs {
			if org = strings.TrimSpace(org); org != "" {
				bundle.Affiliations = append(bundle.Affiliations, storage.AffiliationEvidence{OrgName: org, Year: w.Year})
			}
		}
	}
	if err := o.candidates.SaveCandidateBundle(ctx, bundle); err != nil {
		return err
	}
	cand := bundle.Candidate
	o.publish(job.ID, events.CandidateFound(events.CandidateSummary{
		ID:          cand.Id,
		Name:        cand.Name,
		Affiliation: cand.Affiliation,
		Topics:      topics,
		Score:       breakdown.Total,
		Seniority:   breakdown.Seniority,
	}))
	o.logger.Debug("candidate scored", "job", job.ID, "candidate", cand.Id, "total", breakdown.Total)

	if o.embeddings != nil {
		record := &core.EmbeddingRecord{
			OwnerID: cand.Id,
			Kind:    core.EmbeddingKindProfile,
			RefID:   cand.Id,
			Model:   o.embedder.Model(),
			Dim:     len(profileVec),
			Vector:  profileVec,
		}
		if err := o.embeddings.SaveEmbeddings(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func discoveryQuery(job *core.Job) string {
	for _, s := range []string{job.Query, job.JobDescription} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return DefaultQuery
}

// jobText is what candidates are compared against.
func jobText(job *core.Job) string {
	if s := strings.TrimSpace(job.JobDescription); s != "" {
		return s
	}
	return strings.TrimSpace(job.Query)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
