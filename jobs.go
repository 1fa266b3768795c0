package talentscout

import (
	"context"

	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/events"
)

// MaxStatusResults is the number of ranked candidates a status view carries.
const MaxStatusResults = 20

// CandidateSummary is one ranked candidate of a job.
type CandidateSummary struct {
	ID          core.ID    `json:"candidate_id"`
	Name        string     `json:"name"`
	Affiliation string     `json:"affiliation"`
	Topics      []string   `json:"topics"`
	Score       float64    `json:"score"`
	Seniority   core.Level `json:"seniority"`
}

// JobStatusView is the public state of a job and its best candidates so far.
type JobStatusView struct {
	SearchID core.JobID         `json:"search_id"`
	Status   string             `json:"status"`
	Progress int                `json:"progress"`
	Error    string             `json:"error,omitempty"`
	Results  []CandidateSummary `json:"results"`
}

// SubmitJob stores a new search and starts it in the background.
// Invalid filters are rejected with core.ErrValidation before anything is stored.
func (s *Service) SubmitJob(ctx context.Context, query, jobDescription string, filters core.Filters) (core.JobID, error) {
	job, err := s.orchestrator.Submit(ctx, query, jobDescription, filters)
	if err != nil {
		return "", err
	}
	return job.ID, nil
}

// WaitJobs blocks until every submitted job has finished.
func (s *Service) WaitJobs() {
	s.orchestrator.Wait()
}

// JobStatus returns a job with its top candidates by total score.
func (s *Service) JobStatus(ctx context.Context, id core.JobID) (*JobStatusView, error) {
	job, err := s.store.Jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	top, err := s.store.Candidates.TopCandidates(ctx, id, MaxStatusResults)
	if err != nil {
		return nil, err
	}

	view := &JobStatusView{
		SearchID: job.ID,
		Status:   job.Status.String(),
		Progress: job.Progress,
		Error:    job.Error,
		Results:  make([]CandidateSummary, 0, len(top)),
	}
	for _, sc := range top {
		topics := sc.Summary.Topics
		if topics == nil {
			topics = []string{}
		}
		view.Results = append(view.Results, CandidateSummary{
			ID:          sc.Candidate.Id,
			Name:        sc.Candidate.Name,
			Affiliation: sc.Candidate.Affiliation,
			Topics:      topics,
			Score:       sc.Summary.TotalScore,
			Seniority:   sc.Summary.Breakdown.Seniority,
		})
	}
	return view, nil
}

// Subscribe streams a job's events to sink until ctx is done or the sink
// fails. Each event is delivered to exactly one subscriber of the job.
func (s *Service) Subscribe(ctx context.Context, id core.JobID, sink events.Sink) error {
	if _, err := s.store.Jobs.GetJob(ctx, id); err != nil {
		return err
	}
	return s.registry.Stream(ctx, id, sink, s.streamIdle)
}
