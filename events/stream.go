package events

import (
	"context"
	"errors"
	"time"

	"github.com/poiesic/talentscout/core"
)

// DefaultIdleWindow is how long a stream waits before sending a keep-alive.
const DefaultIdleWindow = 60 * time.Second

// Sink receives stream output.
type Sink interface {
	// KeepAlive is written on connect and after every idle window.
	KeepAlive() error
	// Data carries one encoded event.
	Data(payload []byte) error
}

// Stream forwards a job's events to sink until ctx is done or the sink
// fails. It returns nil when ctx ends the stream.
func (r *Registry) Stream(ctx context.Context, jobID core.JobID, sink Sink, idle time.Duration) error {
	if idle <= 0 {
		idle = DefaultIdleWindow
	}
	q := r.Queue(jobID)

	if err := sink.KeepAlive(); err != nil {
		return err
	}
	for {
		waitCtx, cancel := context.WithTimeout(ctx, idle)
		item, err := q.Next(waitCtx)
		cancel()

		switch {
		case err == nil:
			if err := sink.Data(item); err != nil {
				return err
			}
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, context.DeadlineExceeded):
			if err := sink.KeepAlive(); err != nil {
				return err
			}
		default:
			return err
		}
	}
}
