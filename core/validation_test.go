package core

import (
	"errors"
	"testing"
)

func TestValidateTransition(t *testing.T) {
	all := []JobStatus{JobPending, JobRunning, JobDone, JobError}
	allowed := map[[2]JobStatus]bool{
		{JobPending, JobRunning}: true,
		{JobRunning, JobRunning}: true,
		{JobRunning, JobDone}:    true,
		{JobRunning, JobError}:   true,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				err := ValidateTransition(from, to)
				if allowed[[2]JobStatus{from, to}] {
					if err != nil {
						t.Errorf("ValidateTransition() unexpected error: %v", err)
					}
					return
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("ValidateTransition() error = %v, want %v", err, ErrInvalidTransition)
				}
			})
		}
	}
}

func TestValidateFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantErr error
	}{
		{name: "zero value", filters: Filters{}},
		{name: "max limit", filters: Filters{Limit: MaxDiscoveryLimit}},
		{name: "unknown seniority is accepted", filters: Filters{Seniority: "staff"}},
		{name: "negative limit", filters: Filters{Limit: -1}, wantErr: ErrInvalidLimit},
		{name: "limit too large", filters: Filters{Limit: MaxDiscoveryLimit + 1}, wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilters(tt.filters)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFilters() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrValidation) {
				t.Errorf("ValidateFilters() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJob(t *testing.T) {
	if err := ValidateJob(nil); !errors.Is(err, ErrValidation) {
		t.Errorf("ValidateJob(nil) error = %v", err)
	}
	if err := ValidateJob(&Job{Progress: 101}); !errors.Is(err, ErrInvalidProgress) {
		t.Errorf("ValidateJob() error = %v, want %v", err, ErrInvalidProgress)
	}
	if err := ValidateJob(&Job{Progress: 50}); err != nil {
		t.Errorf("ValidateJob() unexpected error: %v", err)
	}
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name      string
		candidate *Candidate
		wantErr   bool
	}{
		{name: "nil", candidate: nil, wantErr: true},
		{name: "missing name", candidate: &Candidate{JobID: "j"}, wantErr: true},
		{name: "missing job", candidate: &Candidate{Name: "Ada"}, wantErr: true},
		{name: "valid", candidate: &Candidate{Name: "Ada", JobID: "j"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandidate(tt.candidate)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCandidate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCandidate) {
				t.Errorf("ValidateCandidate() error = %v, want %v", err, ErrInvalidCandidate)
			}
		})
	}
}

func TestValidateEmbeddingRecord(t *testing.T) {
	if err := ValidateEmbeddingRecord(&EmbeddingRecord{Dim: 3, Vector: []float32{1, 0, 0}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEmbeddingRecord(&EmbeddingRecord{Dim: 4, Vector: []float32{1, 0, 0}}); !errors.Is(err, ErrInvalidEmbedding) {
		t.Errorf("error = %v, want %v", err, ErrInvalidEmbedding)
	}
	if err := ValidateEmbeddingRecord(&EmbeddingRecord{}); !errors.Is(err, ErrInvalidEmbedding) {
		t.Errorf("error = %v, want %v", err, ErrInvalidEmbedding)
	}
}
