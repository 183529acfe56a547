package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/notify"
)

// memServer is an in-memory stand-in for the jobs API.
type memServer struct {
	mu     sync.Mutex
	jobs   []content.Job
	nextID int
	lists  atomic.Int32
	fail   error
	gate   chan struct{} // when set, List waits on it
}

func (m *memServer) source() Source[content.Job, content.JobDraft] {
	return Source[content.Job, content.JobDraft]{
		List: func(ctx context.Context) ([]content.Job, error) {
			m.lists.Add(1)
			if m.gate != nil {
				<-m.gate
			}
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.fail != nil {
				return nil, m.fail
			}
			return append([]content.Job(nil), m.jobs...), nil
		},
		Create: func(ctx context.Context, d content.JobDraft) (content.Job, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.nextID++
			j := content.Job{ID: fmt.Sprintf("job-%d", m.nextID), Title: d.Title, Status: d.Status, ApplicationCount: 0}
			m.jobs = append(m.jobs, j)
			return j, nil
		},
		Update: func(ctx context.Context, id string, d content.JobDraft) (content.Job, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i := range m.jobs {
				if m.jobs[i].ID == id {
					m.jobs[i].Title = d.Title
					m.jobs[i].ApplicationCount = 7 // server-computed
					return m.jobs[i], nil
				}
			}
			return content.Job{}, &client.NotFoundError{Resource: "job"}
		},
		Delete: func(ctx context.Context, id string) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i := range m.jobs {
				if m.jobs[i].ID == id {
					m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
					return nil
				}
			}
			return &client.NotFoundError{Resource: "job"}
		},
	}
}

func ids(jobs []content.Job) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func TestRoundTripCRUD(t *testing.T) {
	for _, strategy := range []Strategy{PatchLocal, Refetch} {
		srv := &memServer{}
		s := New("jobs", srv.source(), WithStrategy(strategy))
		ctx := context.Background()

		require.NoError(t, s.Load(ctx))
		assert.Empty(t, s.Snapshot())

		created, err := s.Create(ctx, content.JobDraft{Title: "Site Manager", Status: content.JobStatusActive})
		require.NoError(t, err)
		assert.Equal(t, []string{created.ID}, ids(s.Snapshot()))

		require.NoError(t, s.Load(ctx))
		require.Len(t, s.Snapshot(), 1)
		assert.Equal(t, created, s.Snapshot()[0])

		require.NoError(t, s.Remove(ctx, created.ID))
		require.NoError(t, s.Load(ctx))
		_, ok := s.Get(created.ID)
		assert.False(t, ok)
	}
}

func TestUpdateStoresServerRepresentation(t *testing.T) {
	srv := &memServer{jobs: []content.Job{{ID: "job-1", Title: "Old"}}}
	s := New("jobs", srv.source())
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	_, err := s.Update(ctx, "job-1", content.JobDraft{Title: "New"})
	require.NoError(t, err)
	got, _ := s.Get("job-1")
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, 7, got.ApplicationCount)
}

func TestNotFoundEvictsLocalCopy(t *testing.T) {
	srv := &memServer{jobs: []content.Job{{ID: "job-1"}}}
	s := New("jobs", srv.source())
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	srv.jobs = nil // deleted by someone else
	_, err := s.Update(ctx, "job-1", content.JobDraft{Title: "x"})
	assert.Equal(t, client.KindNotFound, client.KindOf(err))
	assert.Empty(t, s.Snapshot())
}

func TestFailedLoadKeepsSnapshot(t *testing.T) {
	srv := &memServer{jobs: []content.Job{{ID: "job-1"}}}
	rec := &notify.Recorder{}
	s := New("jobs", srv.source(), WithGateway(rec))
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	srv.fail = errors.New("connection reset")
	err := s.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, client.KindNetwork, client.KindOf(err))
	assert.Equal(t, []string{"job-1"}, ids(s.Snapshot()))
	assert.Error(t, s.Err())
	msg, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Error, msg.Level)

	srv.fail = nil
	require.NoError(t, s.Load(ctx))
	assert.NoError(t, s.Err())
}

func TestOverlappingLoadsCollapse(t *testing.T) {
	srv := &memServer{jobs: []content.Job{{ID: "job-1"}}, gate: make(chan struct{})}
	s := New("jobs", srv.source())
	ctx := context.Background()

	var wg, started sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			assert.NoError(t, s.Load(ctx))
		}()
	}
	started.Wait()
	require.Eventually(t, func() bool { return srv.lists.Load() == 1 && s.Loading() }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond) // let every caller join the in-flight load
	close(srv.gate)
	wg.Wait()

	assert.Equal(t, int32(1), srv.lists.Load())
	assert.False(t, s.Loading())
	assert.Len(t, s.Snapshot(), 1)
}

func TestStaleLoadDoesNotOverwriteMutation(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	src := Source[content.Job, content.JobDraft]{
		List: func(ctx context.Context) ([]content.Job, error) {
			if calls.Add(1) == 1 {
				<-release
			}
			return []content.Job{}, nil
		},
		Create: func(ctx context.Context, d content.JobDraft) (content.Job, error) {
			return content.Job{ID: "job-9", Title: d.Title}, nil
		},
	}
	s := New("jobs", src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Load(ctx) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	_, err := s.Create(ctx, content.JobDraft{Title: "Crane Operator"})
	require.NoError(t, err)

	// The load began before the create resolved; its empty list is stale.
	close(release)
	require.NoError(t, <-done)
	_, ok := s.Get("job-9")
	assert.True(t, ok)

	// A load started after the create issues a fresh request.
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, int32(2), calls.Load())
}

func TestRemoveUnsupported(t *testing.T) {
	s := New("applications", Source[content.Application, struct{}]{})
	assert.ErrorIs(t, s.Remove(context.Background(), "a1"), ErrUnsupported)
	assert.ErrorIs(t, s.Load(context.Background()), ErrUnsupported)
}

func TestLoadDeduplicatesIDs(t *testing.T) {
	srv := &memServer{jobs: []content.Job{{ID: "job-1", Title: "a"}, {ID: "job-2"}, {ID: "job-1", Title: "b"}}}
	s := New("jobs", srv.source())
	require.NoError(t, s.Load(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, []string{"job-1", "job-2"}, ids(snap))
	assert.Equal(t, "b", snap[0].Title)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	srv := &memServer{jobs: []content.Job{{ID: "job-1"}}}
	s := New("jobs", srv.source())
	var got [][]content.Job
	unsubscribe := s.Subscribe(func(jobs []content.Job) { got = append(got, jobs) })

	ctx := context.Background()
	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Remove(ctx, "job-1"))
	unsubscribe()
	_, err := s.Create(ctx, content.JobDraft{Title: "x"})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	assert.Empty(t, got[1])
}
