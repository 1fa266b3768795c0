package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &JobRepository{backend: backend}, nil
}

// Close is a no-op; jobs use random IDs rather than a sequence.
func (r *JobRepository) Close() error {
	return nil
}

// CreateJob stores a new job in PENDING state.
func (r *JobRepository) CreateJob(ctx context.Context, job *core.Job) (*core.Job, error) {
	if job.ID == "" {
		job.ID = core.NewJobID()
	}
	job.Status = core.JobPending
	job.Progress = 0
	job.Error = ""
	job.CreatedAt = time.Now().UTC()
	job.UpdatedAt = job.CreatedAt
	if err := core.ValidateJob(job); err != nil {
		return nil, err
	}

	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		return tx.Set(makeJobKey(job.ID), storage.MarshalJob(job))
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// GetJob retrieves a job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id core.JobID) (*core.Job, error) {
	var job *core.Job
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		job, err = readValue(tx, makeJobKey(id), storage.UnmarshalJob)
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return job, err
}

// UpdateJobStatus validates and applies a status change.
func (r *JobRepository) UpdateJobStatus(ctx context.Context, id core.JobID, status core.JobStatus, progress int, message string) (*core.Job, error) {
	var job *core.Job
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeJobKey(id)
		var err error
		job, err = readValue(tx, key, storage.UnmarshalJob)
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		if err := core.ValidateTransition(job.Status, status); err != nil {
			return err
		}

		job.Status = status
		job.Progress = progress
		job.Error = message
		job.UpdatedAt = time.Now().UTC()
		if err := core.ValidateJob(job); err != nil {
			return err
		}
		return tx.Set(key, storage.MarshalJob(job))
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}
