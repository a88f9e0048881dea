package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
	"github.com/heartbeat-hq/heartbeat/internal/domain/incident"
	"github.com/heartbeat-hq/heartbeat/internal/domain/ping"
	"github.com/heartbeat-hq/heartbeat/internal/services/notifier"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeIncidentRepo struct {
	open    *incident.Incident
	nextID  int64
	created []*incident.Incident

	findErr    error
	createErr  error
	resolveErr error
}

func (r *fakeIncidentRepo) FindOpen(_ context.Context, _ int64) (*incident.Incident, error) {
	return r.open, r.findErr
}

func (r *fakeIncidentRepo) Create(_ context.Context, inc *incident.Incident) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	inc.ID = r.nextID
	r.created = append(r.created, inc)
	r.open = inc
	return nil
}

func (r *fakeIncidentRepo) Resolve(_ context.Context, id int64, at time.Time) error {
	if r.resolveErr != nil {
		return r.resolveErr
	}
	if r.open != nil && r.open.ID == id {
		r.open = nil
	}
	return nil
}

func (r *fakeIncidentRepo) ListByEndpoint(_ context.Context, _ int64, _ int) ([]*incident.Incident, error) {
	return nil, nil
}

type fakeDispatcher struct {
	jobs []notifier.Job
	full bool
}

func (d *fakeDispatcher) Enqueue(j notifier.Job) bool {
	if d.full {
		return false
	}
	d.jobs = append(d.jobs, j)
	return true
}

func newTestReconciler(repo *fakeIncidentRepo, disp *fakeDispatcher, now time.Time) *Reconciler {
	return &Reconciler{
		Log:        zap.NewNop(),
		Incidents:  repo,
		Dispatcher: disp,
		Clock:      &fakeClock{now: now},
	}
}

func testEndpoint() *endpoint.Endpoint {
	return &endpoint.Endpoint{ID: 7, ProjectID: 3, Name: "api", URL: "https://api.example.com", Method: endpoint.MethodGet}
}

func TestReconcile_DownOpensIncident(t *testing.T) {
	repo := &fakeIncidentRepo{}
	disp := &fakeDispatcher{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newTestReconciler(repo, disp, now)

	err := r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown)
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(7), repo.created[0].EndpointID)
	assert.Equal(t, now, repo.created[0].StartedAt)

	require.Len(t, disp.jobs, 1)
	assert.Equal(t, notifier.TransitionCreated, disp.jobs[0].Kind)
	assert.Equal(t, repo.created[0], disp.jobs[0].Incident)
}

func TestReconcile_DownWithOpenIncidentDoesNothing(t *testing.T) {
	repo := &fakeIncidentRepo{open: &incident.Incident{ID: 1, EndpointID: 7}}
	disp := &fakeDispatcher{}
	r := newTestReconciler(repo, disp, time.Now())

	err := r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown)
	require.NoError(t, err)

	assert.Empty(t, repo.created)
	assert.Empty(t, disp.jobs)
}

func TestReconcile_UpResolvesOpenIncident(t *testing.T) {
	started := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	repo := &fakeIncidentRepo{open: &incident.Incident{ID: 42, EndpointID: 7, StartedAt: started}}
	disp := &fakeDispatcher{}
	now := started.Add(30 * time.Minute)
	r := newTestReconciler(repo, disp, now)

	err := r.Reconcile(context.Background(), testEndpoint(), ping.StatusUp)
	require.NoError(t, err)

	assert.Nil(t, repo.open)
	require.Len(t, disp.jobs, 1)
	assert.Equal(t, notifier.TransitionResolved, disp.jobs[0].Kind)
	require.NotNil(t, disp.jobs[0].Incident.ResolvedAt)
	assert.Equal(t, now, *disp.jobs[0].Incident.ResolvedAt)
}

func TestReconcile_UpWithoutIncidentDoesNothing(t *testing.T) {
	repo := &fakeIncidentRepo{}
	disp := &fakeDispatcher{}
	r := newTestReconciler(repo, disp, time.Now())

	err := r.Reconcile(context.Background(), testEndpoint(), ping.StatusUp)
	require.NoError(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, disp.jobs)
}

func TestReconcile_DegradedIsInert(t *testing.T) {
	t.Run("no open incident", func(t *testing.T) {
		repo := &fakeIncidentRepo{}
		disp := &fakeDispatcher{}
		r := newTestReconciler(repo, disp, time.Now())

		require.NoError(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDegraded))
		assert.Empty(t, repo.created)
		assert.Empty(t, disp.jobs)
	})
	t.Run("open incident stays open", func(t *testing.T) {
		repo := &fakeIncidentRepo{open: &incident.Incident{ID: 1, EndpointID: 7}}
		disp := &fakeDispatcher{}
		r := newTestReconciler(repo, disp, time.Now())

		require.NoError(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDegraded))
		assert.NotNil(t, repo.open)
		assert.Empty(t, disp.jobs)
	})
}

func TestReconcile_RepeatedDownOpensOnlyOne(t *testing.T) {
	repo := &fakeIncidentRepo{}
	disp := &fakeDispatcher{}
	r := newTestReconciler(repo, disp, time.Now())

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown))
	}
	assert.Len(t, repo.created, 1)
	assert.Len(t, disp.jobs, 1)
}

func TestReconcile_ErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")

	t.Run("find", func(t *testing.T) {
		r := newTestReconciler(&fakeIncidentRepo{findErr: boom}, &fakeDispatcher{}, time.Now())
		assert.ErrorIs(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown), boom)
	})
	t.Run("create", func(t *testing.T) {
		disp := &fakeDispatcher{}
		r := newTestReconciler(&fakeIncidentRepo{createErr: boom}, disp, time.Now())
		assert.ErrorIs(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown), boom)
		assert.Empty(t, disp.jobs)
	})
	t.Run("resolve", func(t *testing.T) {
		disp := &fakeDispatcher{}
		repo := &fakeIncidentRepo{open: &incident.Incident{ID: 1, EndpointID: 7}, resolveErr: boom}
		r := newTestReconciler(repo, disp, time.Now())
		assert.ErrorIs(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusUp), boom)
		assert.Empty(t, disp.jobs)
	})
}

func TestReconcile_FullQueueIsNotAnError(t *testing.T) {
	repo := &fakeIncidentRepo{}
	disp := &fakeDispatcher{full: true}
	r := newTestReconciler(repo, disp, time.Now())

	require.NoError(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown))
	assert.Len(t, repo.created, 1)
}

func TestReconcile_NilDispatcher(t *testing.T) {
	repo := &fakeIncidentRepo{}
	r := &Reconciler{Log: zap.NewNop(), Incidents: repo, Clock: &fakeClock{now: time.Now()}}

	require.NoError(t, r.Reconcile(context.Background(), testEndpoint(), ping.StatusDown))
	assert.Len(t, repo.created, 1)
}
