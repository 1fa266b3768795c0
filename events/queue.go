package events

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of encoded events.
type Queue struct {
	mu     sync.Mutex
	items  [][]byte
	signal chan struct{} // closed and replaced on every push
}

func newQueue() *Queue {
	return &Queue{signal: make(chan struct{})}
}

// Push appends an item. It never blocks.
func (q *Queue) Push(item []byte) {
	q.mu.Lock()
	q.items = append(q.items, item)
	close(q.signal)
	q.signal = make(chan struct{})
	q.mu.Unlock()
}

// Next removes and returns the oldest item, waiting until one is available
// or ctx is done.
func (q *Queue) Next(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		signal := q.signal
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-signal:
		}
	}
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
