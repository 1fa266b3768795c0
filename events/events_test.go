package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/talentscout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventEncoding(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"progress zero", Progress(0), `{"type":"progress","progress":0}`},
		{"progress", Progress(42), `{"type":"progress","progress":42}`},
		{"finished", Finished(), `{"type":"finished"}`},
		{"error", Failed("boom"), `{"type":"error","message":"boom"}`},
		{"candidate", CandidateFound(CandidateSummary{ID: 3, Name: "Ada", Affiliation: "MIT", Score: 0.5, Seniority: core.LevelSenior}),
			`{"type":"candidate","candidate":{"id":3,"name":"Ada","affiliation":"MIT","topics":[],"score":0.5,"seniority":"senior"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.event.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestEventDecoding_CandidateRoundTrip(t *testing.T) {
	for _, level := range []core.Level{core.LevelUnset, core.LevelJunior, core.LevelPrincipal, core.LevelUnrecognized} {
		t.Run(level.String(), func(t *testing.T) {
			in := CandidateFound(CandidateSummary{ID: 9, Name: "Grace", Topics: []string{"compilers"}, Score: 0.25, Seniority: level})
			data, err := in.Encode()
			require.NoError(t, err)

			var out Event
			require.NoError(t, json.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := newQueue()
	q.Push([]byte("a"))
	q.Push([]byte("b"))
	assert.Equal(t, 2, q.Len())

	ctx := context.Background()
	first, err := q.Next(ctx)
	require.NoError(t, err)
	second, err := q.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", string(first))
	assert.Equal(t, "b", string(second))
}

func TestQueue_NextWaitsForPush(t *testing.T) {
	q := newQueue()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push([]byte("late"))
	}()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	item, err := q.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "late", string(item))
}

func TestQueue_NextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newQueue().Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_LazyPerJobQueues(t *testing.T) {
	r := NewRegistry(nil)
	assert.Same(t, r.Queue("a"), r.Queue("a"))
	assert.NotSame(t, r.Queue("a"), r.Queue("b"))

	require.NoError(t, r.Publish("a", Progress(1)))
	assert.Equal(t, 1, r.Queue("a").Len())
	assert.Equal(t, 0, r.Queue("b").Len())
}

// recordingSink collects stream output.
type recordingSink struct {
	mu         sync.Mutex
	keepAlives int
	data       []string
	failOnData error
}

func (s *recordingSink) KeepAlive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepAlives++
	return nil
}

func (s *recordingSink) Data(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOnData != nil {
		return s.failOnData
	}
	s.data = append(s.data, string(payload))
	return nil
}

func (s *recordingSink) snapshot() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keepAlives, append([]string(nil), s.data...)
}

func TestStream_ForwardsEventsAndKeepsAlive(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Publish("job", Progress(1)))
	require.NoError(t, r.Publish("job", Finished()))

	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Stream(ctx, "job", sink, 20*time.Millisecond) }()

	require.Eventually(t, func() bool {
		keepAlives, data := sink.snapshot()
		return len(data) == 2 && keepAlives >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	_, data := sink.snapshot()
	var first Event
	require.NoError(t, json.Unmarshal([]byte(data[0]), &first))
	assert.Equal(t, TypeProgress, first.Type)
	assert.Equal(t, 1, *first.Progress)
}

func TestStream_SinkError(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Publish("job", Finished()))
	boom := errors.New("client gone")

	err := r.Stream(context.Background(), "job", &recordingSink{failOnData: boom}, time.Second)
	assert.ErrorIs(t, err, boom)
}

func TestStream_SubscribersSplitEvents(t *testing.T) {
	r := NewRegistry(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, b := &recordingSink{}, &recordingSink{}
	go r.Stream(ctx, "job", a, time.Minute)
	go r.Stream(ctx, "job", b, time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Publish("job", Progress(i)))
	}
	require.Eventually(t, func() bool {
		_, da := a.snapshot()
		_, db := b.snapshot()
		return len(da)+len(db) == 10
	}, time.Second, 5*time.Millisecond)
}
