package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
	"github.com/heartbeat-hq/heartbeat/internal/domain/events"
	"github.com/heartbeat-hq/heartbeat/internal/domain/incident"
	"github.com/heartbeat-hq/heartbeat/internal/domain/project"
)

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

type stubEndpointRepo struct {
	ep  *endpoint.Endpoint
	err error
}

func (r stubEndpointRepo) GetByID(_ context.Context, _ int64) (*endpoint.Endpoint, error) {
	return r.ep, r.err
}
func (r stubEndpointRepo) ListActive(_ context.Context) ([]*endpoint.Endpoint, error) {
	return nil, nil
}

type stubProjectRepo struct {
	prj *project.Project
	err error
}

func (r stubProjectRepo) GetByID(_ context.Context, _ int64) (*project.Project, error) {
	return r.prj, r.err
}

type stubChannelRepo struct {
	chs []*channel.Channel
	err error
}

func (r stubChannelRepo) ListEnabled(_ context.Context, _ int64) ([]*channel.Channel, error) {
	return r.chs, r.err
}

type recordingLogRepo struct {
	mu   sync.Mutex
	rows []*channel.Log
	err  error
}

func (r *recordingLogRepo) Create(_ context.Context, l *channel.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, l)
	return nil
}

type recordingDeliverer struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (d *recordingDeliverer) Deliver(_ context.Context, _ *project.Project, msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.msgs = append(d.msgs, msg)
	return nil
}

type recordingEvents struct {
	mu    sync.Mutex
	kinds []events.Kind
	err   error
}

func (e *recordingEvents) PublishIncident(_ context.Context, _, _ int64, kind events.Kind, _ time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.kinds = append(e.kinds, kind)
	return nil
}

func testHandler(chs []*channel.Channel, logs *recordingLogRepo, del Deliverer, ev events.IncidentEvents) *Handler {
	return &Handler{
		Log:       zap.NewNop(),
		Endpoints: stubEndpointRepo{ep: &endpoint.Endpoint{ID: 7, ProjectID: 3, Name: "api", URL: "https://api.example.com"}},
		Projects:  stubProjectRepo{prj: &project.Project{ID: 3, Name: "acme", OwnerEmail: "ops@acme.test"}},
		Channels:  stubChannelRepo{chs: chs},
		Logs:      logs,
		Events:    ev,
		Deliverers: map[channel.Type]Deliverer{
			channel.TypeEmail: del,
		},
		Clock: stubClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func createdJob() Job {
	return Job{
		Incident: &incident.Incident{ID: 11, EndpointID: 7, StartedAt: time.Date(2025, 6, 1, 11, 50, 0, 0, time.UTC)},
		Kind:     TransitionCreated,
	}
}

func TestDispatch_DeliversAndLogs(t *testing.T) {
	logs := &recordingLogRepo{}
	del := &recordingDeliverer{}
	h := testHandler([]*channel.Channel{{ID: 1, ProjectID: 3, Type: channel.TypeEmail, Enabled: true}}, logs, del, nil)

	h.Dispatch(context.Background(), createdJob())

	require.Len(t, del.msgs, 1)
	assert.Equal(t, "🔴 Down: api (acme)", del.msgs[0].Subject)

	require.Len(t, logs.rows, 1)
	row := logs.rows[0]
	assert.Equal(t, int64(11), row.IncidentID)
	assert.Equal(t, int64(1), row.ChannelID)
	assert.True(t, row.Success)
	assert.Nil(t, row.Message)
}

func TestDispatch_FailedChannelGetsFailedRow(t *testing.T) {
	logs := &recordingLogRepo{}
	del := &recordingDeliverer{err: errors.New("smtp: connection refused")}
	h := testHandler([]*channel.Channel{{ID: 1, Type: channel.TypeEmail}}, logs, del, nil)

	h.Dispatch(context.Background(), createdJob())

	require.Len(t, logs.rows, 1)
	row := logs.rows[0]
	assert.False(t, row.Success)
	require.NotNil(t, row.Message)
	assert.Equal(t, "smtp: connection refused", *row.Message)
}

func TestDispatch_ChannelFailureIsIsolated(t *testing.T) {
	// Two channels of the same type share one deliverer that fails first and
	// succeeds after, so one failed row and one success row are written.
	logs := &recordingLogRepo{}
	del := &flakyDeliverer{failFirst: true}
	h := testHandler([]*channel.Channel{
		{ID: 1, Type: channel.TypeEmail},
		{ID: 2, Type: channel.TypeEmail},
	}, logs, del, nil)

	h.Dispatch(context.Background(), createdJob())

	require.Len(t, logs.rows, 2)
	assert.False(t, logs.rows[0].Success)
	assert.True(t, logs.rows[1].Success)
}

type flakyDeliverer struct {
	failFirst bool
	calls     int
}

func (d *flakyDeliverer) Deliver(_ context.Context, _ *project.Project, _ Message) error {
	d.calls++
	if d.failFirst && d.calls == 1 {
		return errors.New("transient")
	}
	return nil
}

func TestDispatch_UnknownChannelType(t *testing.T) {
	logs := &recordingLogRepo{}
	h := testHandler([]*channel.Channel{{ID: 5, Type: channel.Type("SLACK")}}, logs, &recordingDeliverer{}, nil)

	h.Dispatch(context.Background(), createdJob())

	require.Len(t, logs.rows, 1)
	assert.False(t, logs.rows[0].Success)
	require.NotNil(t, logs.rows[0].Message)
	assert.Contains(t, *logs.rows[0].Message, "SLACK")
}

func TestDispatch_ResolvedMessage(t *testing.T) {
	logs := &recordingLogRepo{}
	del := &recordingDeliverer{}
	h := testHandler([]*channel.Channel{{ID: 1, Type: channel.TypeEmail}}, logs, del, nil)

	started := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	resolved := started.Add(4 * time.Minute)
	h.Dispatch(context.Background(), Job{
		Incident: &incident.Incident{ID: 11, EndpointID: 7, StartedAt: started, ResolvedAt: &resolved},
		Kind:     TransitionResolved,
	})

	require.Len(t, del.msgs, 1)
	assert.Equal(t, "🟢 Recovered: api (acme)", del.msgs[0].Subject)
	assert.Contains(t, del.msgs[0].Body, "4 minutes")
}

func TestDispatch_PublishesEvents(t *testing.T) {
	logs := &recordingLogRepo{}
	ev := &recordingEvents{}
	h := testHandler([]*channel.Channel{{ID: 1, Type: channel.TypeEmail}}, logs, &recordingDeliverer{}, ev)

	h.Dispatch(context.Background(), createdJob())

	require.Len(t, ev.kinds, 1)
	assert.Equal(t, events.KindOpened, ev.kinds[0])
}

func TestDispatch_EventFailureDoesNotBlockDelivery(t *testing.T) {
	logs := &recordingLogRepo{}
	del := &recordingDeliverer{}
	ev := &recordingEvents{err: errors.New("broker unreachable")}
	h := testHandler([]*channel.Channel{{ID: 1, Type: channel.TypeEmail}}, logs, del, ev)

	h.Dispatch(context.Background(), createdJob())

	assert.Len(t, del.msgs, 1)
	require.Len(t, logs.rows, 1)
	assert.True(t, logs.rows[0].Success)
}

func TestDispatch_EndpointLookupFailure(t *testing.T) {
	logs := &recordingLogRepo{}
	del := &recordingDeliverer{}
	h := testHandler(nil, logs, del, nil)
	h.Endpoints = stubEndpointRepo{err: errors.New("not found")}

	h.Dispatch(context.Background(), createdJob())

	assert.Empty(t, del.msgs)
	assert.Empty(t, logs.rows)
}

func TestDispatch_LogInsertFailureDoesNotPanic(t *testing.T) {
	logs := &recordingLogRepo{err: errors.New("db down")}
	del := &recordingDeliverer{}
	h := testHandler([]*channel.Channel{{ID: 1, Type: channel.TypeEmail}}, logs, del, nil)

	assert.NotPanics(t, func() { h.Dispatch(context.Background(), createdJob()) })
	assert.Len(t, del.msgs, 1)
}
