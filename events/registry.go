package events

import (
	"log/slog"
	"sync"

	"github.com/poiesic/talentscout/core"
)

// Registry maps jobs to their event queues. It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	queues map[core.JobID]*Queue
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		queues: make(map[core.JobID]*Queue),
		logger: logger.With("component", "events"),
	}
}

// Queue returns the queue for a job, creating it if needed.
func (r *Registry) Queue(jobID core.JobID) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[jobID]
	if !ok {
		q = newQueue()
		r.queues[jobID] = q
	}
	return q
}

// Publish encodes an event and appends it to the job's queue.
func (r *Registry) Publish(jobID core.JobID, event Event) error {
	data, err := event.Encode()
	if err != nil {
		return err
	}
	r.Queue(jobID).Push(data)
	r.logger.Debug("published event", "job", jobID, "type", event.Type)
	return nil
}
