package monitor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
	"github.com/heartbeat-hq/heartbeat/internal/domain/incident"
	"github.com/heartbeat-hq/heartbeat/internal/domain/ping"
	"github.com/heartbeat-hq/heartbeat/internal/services/notifier"
)

// Dispatcher accepts incident-transition jobs for asynchronous delivery.
type Dispatcher interface {
	Enqueue(j notifier.Job) bool
}

// Reconciler turns a stream of per-check classifications into incident
// transitions. Only UP/DOWN edges move the state machine: DOWN with no open
// incident opens one, UP with an open incident resolves it, and DEGRADED
// never transitions either way.
type Reconciler struct {
	Log        *zap.Logger
	Incidents  incident.Repo
	Dispatcher Dispatcher
	Clock      channel.Clock
}

// Reconcile looks up the endpoint's open incident and applies the
// transition table. Notification dispatch is fire-and-forget: a full queue
// is logged, never an error.
func (r *Reconciler) Reconcile(ctx context.Context, ep *endpoint.Endpoint, status ping.Status) error {
	open, err := r.Incidents.FindOpen(ctx, ep.ID)
	if err != nil {
		return fmt.Errorf("find open incident: %w", err)
	}

	switch {
	case status == ping.StatusDown && open == nil:
		inc := &incident.Incident{
			EndpointID: ep.ID,
			StartedAt:  r.Clock.Now().UTC(),
		}
		if err := r.Incidents.Create(ctx, inc); err != nil {
			return fmt.Errorf("create incident: %w", err)
		}
		mIncidentsOpened.Inc()
		r.Log.Info("incident opened",
			zap.Int64("endpoint_id", ep.ID),
			zap.Int64("incident_id", inc.ID),
		)
		r.notify(inc, notifier.TransitionCreated)

	case status == ping.StatusUp && open != nil:
		at := r.Clock.Now().UTC()
		if err := r.Incidents.Resolve(ctx, open.ID, at); err != nil {
			return fmt.Errorf("resolve incident: %w", err)
		}
		open.ResolvedAt = &at
		mIncidentsResolved.Inc()
		r.Log.Info("incident resolved",
			zap.Int64("endpoint_id", ep.ID),
			zap.Int64("incident_id", open.ID),
			zap.Duration("downtime", at.Sub(open.StartedAt)),
		)
		r.notify(open, notifier.TransitionResolved)
	}

	return nil
}

func (r *Reconciler) notify(inc *incident.Incident, kind notifier.Transition) {
	if r.Dispatcher == nil {
		return
	}
	r.Dispatcher.Enqueue(notifier.Job{Incident: inc, Kind: kind})
}
