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


package core

import (
	"fmt"
)

// MaxDiscoveryLimit caps the number of authors a single job may enrich.
const MaxDiscoveryLimit = 50

// ValidateFilters validates job filters.
//
// Validation rules:
//   - Limit must be within [0, MaxDiscoveryLimit]; 0 selects the default
//
// NOT validated:
//   - Seniority (unknown names are scored as unrecognized levels)
func ValidateFilters(f Filters) error {
	if f.Limit < 0 || f.Limit > MaxDiscoveryLimit {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidLimit, f.Limit)
	}
	return nil
}

// ValidateTransition checks that a job may move from one status to another.
//
//	PENDING -> RUNNING
//	RUNNING -> RUNNING (progress updates)
//	RUNNING -> DONE | ERROR
//
// DONE and ERROR are terminal.
func ValidateTransition(from, to JobStatus) error {
	ok := false
	switch from {
	case JobPending:
		ok = to == JobRunning
	case JobRunning:
		ok = to == JobRunning || to == JobDone || to == JobError
	case JobDone, JobError:
		ok = false
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateJob validates a Job before it is persisted.
func ValidateJob(job *Job) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrValidation)
	}
	if job.Progress < 0 || job.Progress > 100 {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidProgress, job.Progress)
	}
	return ValidateFilters(job.Filters)
}

// ValidateCandidate validates a Candidate.
//
// Validation rules:
//   - Name must not be empty
//   - JobID must not be empty
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidCandidate)
	}
	if c.JobID == "" {
		return fmt.Errorf("%w: job id cannot be empty", ErrInvalidCandidate)
	}
	return nil
}

// ValidateEmbeddingRecord enforces len(Vector) == Dim.
func ValidateEmbeddingRecord(r *EmbeddingRecord) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbedding)
	}
	if r.Dim <= 0 || len(r.Vector) != r.Dim {
		return fmt.Errorf("%w: dim %d, vector length %d", ErrInvalidEmbedding, r.Dim, len(r.Vector))
	}
	return nil
}
