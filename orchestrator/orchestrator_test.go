package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/talentscout/ai/mock"
	"github.com/poiesic/talentscout/core"
	"github.com/poiesic/talentscout/events"
	"github.com/poiesic/talentscout/storage"
	"github.com/poiesic/talentscout/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscoverer struct {
	mu          sync.Mutex
	discoverErr error
	authors     []core.Author
	works       map[string][]core.Work
	worksErr    map[string]error
	queries     []string
	limits      []int
}

func (f *fakeDiscoverer) DiscoverAuthors(ctx context.Context, query string, limit int) ([]core.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}
	return f.authors, nil
}

func (f *fakeDiscoverer) FetchTopWorks(ctx context.Context, authorID string, perPage int) ([]core.Work, error) {
	if err := f.worksErr[authorID]; err != nil {
		return nil, err
	}
	return f.works[authorID], nil
}

type fixture struct {
	store      *badger.Store
	registry   *events.Registry
	discoverer *fakeDiscoverer
	orch       *Orchestrator
}

type failingEmbeddings struct {
	storage.EmbeddingRepository
	err error
}

func (f failingEmbeddings) SaveEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error {
	return f.err
}

func newFixture(t *testing.T, d *fakeDiscoverer, opts ...func(*badger.Store) Option) *fixture {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry := events.NewRegistry(nil)
	clock := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	options := []Option{WithEmbeddingRepository(store.Embeddings), WithClock(clock), WithPoolSize(2)}
	for _, opt := range opts {
		options = append(options, opt(store))
	}
	orch, err := New(store.Jobs, store.Candidates, d, mock.NewMockTopicExtractor(), mock.NewMockEmbedder(), registry, options...)
	require.NoError(t, err)
	t.Cleanup(func() { orch.Close() })

	return &fixture{store: store, registry: registry, discoverer: d, orch: orch}
}

func (f *fixture) newJob(t *testing.T, query, description string, filters core.Filters) *core.Job {
	t.Helper()
	job, err := f.store.Jobs.CreateJob(context.Background(), &core.Job{Query: query, JobDescription: description, Filters: filters})
	require.NoError(t, err)
	return job
}

// drain returns the types of every queued event and the decoded events.
func (f *fixture) drain(t *testing.T, jobID core.JobID) ([]events.Type, []events.Event) {
	t.Helper()
	q := f.registry.Queue(jobID)
	var (
		types []events.Type
		all   []events.Event
	)
	for q.Len() > 0 {
		data, err := q.Next(context.Background())
		require.NoError(t, err)
		var e events.Event
		require.NoError(t, json.Unmarshal(data, &e))
		types = append(types, e.Type)
		all = append(all, e)
	}
	return types, all
}

func progressValues(all []events.Event) []int {
	var out []int
	for _, e := range all {
		if e.Type == events.TypeProgress {
			out = append(out, *e.Progress)
		}
	}
	return out
}

func threeAuthors() *fakeDiscoverer {
	return &fakeDiscoverer{
		authors: []core.Author{
			{ExternalID: "A1", Name: "Ada", Affiliation: "MIT", WorksCount: 90, CitedByCount: 20000},
			{ExternalID: "A2", Name: "Grace", Affiliation: "Yale", WorksCount: 20, CitedByCount: 800},
			{ExternalID: "A3", Name: "Alan", Affiliation: "Manchester", WorksCount: 4, CitedByCount: 30},
		},
		works: map[string][]core.Work{
			"A1": {
				{Title: "Graph neural networks for molecules", Abstract: "graph learning at scale", Year: 2024, Citations: 600, Orgs: []string{"MIT"}},
				{Title: "Graph attention", Abstract: "attention over graph neighbourhoods", Year: 2024, Citations: 300, Orgs: []string{"MIT"}},
				{Title: "Early work", Year: 2008, Citations: 50, Orgs: []string{"Stanford"}},
			},
			"A2": {{Title: "Compilers", Abstract: "language design", Year: 2019, Citations: 120, Orgs: []string{"Yale"}}},
			"A3": {{Title: "Undated graph note", Citations: 3, Orgs: []string{"Manchester"}}},
		},
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	registry := events.NewRegistry(nil)
	d := &fakeDiscoverer{}

	_, err = New(nil, store.Candidates, d, mock.NewMockTopicExtractor(), mock.NewMockEmbedder(), registry)
	assert.ErrorIs(t, err, ErrJobRepositoryRequired)
	_, err = New(store.Jobs, store.Candidates, nil, mock.NewMockTopicExtractor(), mock.NewMockEmbedder(), registry)
	assert.ErrorIs(t, err, ErrDiscovererRequired)
	_, err = New(store.Jobs, store.Candidates, d, mock.NewMockTopicExtractor(), mock.NewMockEmbedder(), nil)
	assert.ErrorIs(t, err, ErrRegistryRequired)
}

func TestRun_ZeroResults(t *testing.T) {
	f := newFixture(t, &fakeDiscoverer{})
	job := f.newJob(t, "", "", core.Filters{})

	f.orch.Run(context.Background(), job)

	stored, err := f.store.Jobs.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobDone, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, []string{DefaultQuery}, f.discoverer.queries)
	assert.Equal(t, []int{DefaultLimit}, f.discoverer.limits)

	types, _ := f.drain(t, job.ID)
	assert.Equal(t, []events.Type{events.TypeProgress, events.TypeFinished}, types)
}

func TestRun_ThreeAuthors(t *testing.T) {
	f := newFixture(t, threeAuthors())
	job := f.newJob(t, "graph learning", "", core.Filters{Limit: 3, Seniority: "senior"})
	ctx := context.Background()

	f.orch.Run(ctx, job)

	stored, err := f.store.Jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobDone, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Empty(t, stored.Error)
	assert.Equal(t, []int{3}, f.discoverer.limits)

	types, all := f.drain(t, job.ID)
	assert.Equal(t, []events.Type{
		events.TypeProgress,
		events.TypeCandidate, events.TypeProgress,
		events.TypeCandidate, events.TypeProgress,
		events.TypeCandidate, events.TypeProgress,
		events.TypeFinished,
	}, types)
	assert.Equal(t, []int{1, 35, 65, 95}, progressValues(all))
	assert.Equal(t, "Ada", all[1].Candidate.Name)
	assert.Equal(t, core.LevelPrincipal, all[1].Candidate.Seniority)

	top, err := f.store.Candidates.TopCandidates(ctx, job.ID, 20)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Ada", top[0].Candidate.Name)
	for i, sc := range top {
		assert.GreaterOrEqual(t, sc.Summary.TotalScore, 0.0)
		assert.LessOrEqual(t, sc.Summary.TotalScore, 1.0)
		assert.Equal(t, core.LevelSenior, sc.Summary.Breakdown.RequestedLevel)
		if i > 0 {
			assert.LessOrEqual(t, sc.Summary.TotalScore, top[i-1].Summary.TotalScore)
		}
	}

	ada := top[0].Candidate
	pubs, err := f.store.Candidates.GetPublications(ctx, ada.Id)
	require.NoError(t, err)
	require.Len(t, pubs, 3)
	assert.Equal(t, 600, pubs[0].Citations)

	affs, err := f.store.Candidates.GetAffiliations(ctx, ada.Id)
	require.NoError(t, err)
	require.Len(t, affs, 2)
	assert.Equal(t, "Stanford", affs[0].OrgName)
	assert.Equal(t, 2024, affs[1].Year)
	assert.Equal(t, 2, affs[1].EvidenceCount)

	profile, err := f.store.Embeddings.GetEmbeddings(ctx, ada.Id, core.EmbeddingKindProfile)
	require.NoError(t, err)
	require.Len(t, profile, 1)
	assert.Equal(t, mock.DefaultDim, profile[0].Dim)

	// Undated works add no affiliation rows.
	alan := top[2].Candidate
	if alan.Name != "Alan" {
		alan = top[1].Candidate
	}
	affs, err = f.store.Candidates.GetAffiliations(ctx, alan.Id)
	require.NoError(t, err)
	assert.Empty(t, affs)
}

func TestRun_SecondAuthorFails(t *testing.T) {
	d := threeAuthors()
	d.worksErr = map[string]error{"A2": errors.New("openalex down")}
	f := newFixture(t, d)
	job := f.newJob(t, "graph learning", "", core.Filters{})
	ctx := context.Background()

	f.orch.Run(ctx, job)

	stored, err := f.store.Jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobError, stored.Status)
	assert.Equal(t, "openalex down", stored.Error)
	assert.Equal(t, 35, stored.Progress)

	types, all := f.drain(t, job.ID)
	assert.Equal(t, []events.Type{events.TypeProgress, events.TypeCandidate, events.TypeProgress, events.TypeError}, types)
	assert.Equal(t, "openalex down", all[3].Message)

	top, err := f.store.Candidates.TopCandidates(ctx, job.ID, 20)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Ada", top[0].Candidate.Name)
}

func TestRun_DiscoveryFails(t *testing.T) {
	d := threeAuthors()
	d.discoverErr = errors.New("openalex 503")
	f := newFixture(t, d)
	job := f.newJob(t, "graph learning", "", core.Filters{})
	ctx := context.Background()

	f.orch.Run(ctx, job)

	stored, err := f.store.Jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobError, stored.Status)
	assert.Equal(t, "openalex 503", stored.Error)

	types, all := f.drain(t, job.ID)
	assert.Equal(t, []events.Type{events.TypeProgress, events.TypeError}, types)
	assert.NotEmpty(t, all[1].Message)

	top, err := f.store.Candidates.TopCandidates(ctx, job.ID, 20)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestRun_ProfileEmbeddingFails(t *testing.T) {
	d := threeAuthors()
	f := newFixture(t, d, func(s *badger.Store) Option {
		return WithEmbeddingRepository(failingEmbeddings{EmbeddingRepository: s.Embeddings, err: errors.New("disk full")})
	})
	job := f.newJob(t, "graph learning", "", core.Filters{})
	ctx := context.Background()

	f.orch.Run(ctx, job)

	stored, err := f.store.Jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobError, stored.Status)

	// the persisted candidate was announced before the failure
	types, all := f.drain(t, job.ID)
	assert.Equal(t, []events.Type{events.TypeProgress, events.TypeCandidate, events.TypeError}, types)
	assert.Equal(t, "Ada", all[1].Candidate.Name)

	top, err := f.store.Candidates.TopCandidates(ctx, job.ID, 20)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, all[1].Candidate.ID, top[0].Candidate.Id)
}

func TestSubmit(t *testing.T) {
	f := newFixture(t, threeAuthors())
	ctx := context.Background()

	job, err := f.orch.Submit(ctx, "", "We need graph learning experience", core.Filters{})
	require.NoError(t, err)
	assert.Equal(t, core.JobPending, job.Status)
	f.orch.Wait()

	stored, err := f.store.Jobs.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.JobDone, stored.Status)
	assert.Equal(t, []string{"We need graph learning experience"}, f.discoverer.queries)
}

func TestSubmit_InvalidFilters(t *testing.T) {
	f := newFixture(t, threeAuthors())
	_, err := f.orch.Submit(context.Background(), "q", "", core.Filters{Limit: core.MaxDiscoveryLimit + 1})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, f.discoverer.queries)
}

func TestSubmit_AfterClose(t *testing.T) {
	f := newFixture(t, threeAuthors())
	require.NoError(t, f.orch.Close())
	_, err := f.orch.Submit(context.Background(), "q", "", core.Filters{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "hé", truncate("héllo", 2))
}
