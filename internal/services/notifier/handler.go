package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
	"github.com/heartbeat-hq/heartbeat/internal/domain/events"
	"github.com/heartbeat-hq/heartbeat/internal/domain/project"
	"github.com/heartbeat-hq/heartbeat/internal/obs"
	"github.com/heartbeat-hq/heartbeat/internal/obs/retry"
)

// Handler fans one incident transition out to every enabled channel of the
// owning project and records a notification-log row per attempt. Channel
// failures are isolated: they become failed log rows, never errors.
type Handler struct {
	Log        *zap.Logger
	Endpoints  endpoint.Repo
	Projects   project.Repo
	Channels   channel.Repo
	Logs       channel.LogRepo
	Events     events.IncidentEvents // nil when the event stream is disabled
	Deliverers map[channel.Type]Deliverer
	Clock      channel.Clock
}

func (h *Handler) Dispatch(ctx context.Context, j Job) {
	inc := j.Incident
	log := obs.WithTrace(ctx, h.Log).With(
		zap.Int64("incident_id", inc.ID),
		zap.String("transition", string(j.Kind)),
	)

	ep, err := h.Endpoints.GetByID(ctx, inc.EndpointID)
	if err != nil {
		log.Error("get endpoint", zap.Int64("endpoint_id", inc.EndpointID), zap.Error(err))
		return
	}
	prj, err := h.Projects.GetByID(ctx, ep.ProjectID)
	if err != nil {
		log.Error("get project", zap.Int64("project_id", ep.ProjectID), zap.Error(err))
		return
	}

	h.publishEvent(ctx, j, log)

	chs, err := h.Channels.ListEnabled(ctx, prj.ID)
	if err != nil {
		log.Error("list channels", zap.Error(err))
		return
	}
	log.Debug("dispatching", zap.Int("channels", len(chs)))

	msg := h.buildMessage(j, ep, prj)

	for _, ch := range chs {
		var failMsg *string
		if err := h.deliver(ctx, ch, prj, msg); err != nil {
			s := err.Error()
			failMsg = &s
			mDeliveryFailed.Inc()
			log.Warn("delivery failed",
				zap.Int64("channel_id", ch.ID),
				zap.String("channel_type", string(ch.Type)),
				zap.Error(err),
			)
		} else {
			mDelivered.Inc()
		}

		row := &channel.Log{
			IncidentID: inc.ID,
			ChannelID:  ch.ID,
			Success:    failMsg == nil,
			Message:    failMsg,
			CreatedAt:  h.Clock.Now().UTC(),
		}
		if err := h.Logs.Create(ctx, row); err != nil {
			log.Warn("insert notification log", zap.Int64("channel_id", ch.ID), zap.Error(err))
		}
	}
}

func (h *Handler) deliver(ctx context.Context, ch *channel.Channel, prj *project.Project, msg Message) error {
	d, ok := h.Deliverers[ch.Type]
	if !ok {
		return fmt.Errorf("no deliverer for channel type %q", ch.Type)
	}
	return d.Deliver(ctx, prj, msg)
}

func (h *Handler) buildMessage(j Job, ep *endpoint.Endpoint, prj *project.Project) Message {
	if j.Kind == TransitionResolved && j.Incident.ResolvedAt != nil {
		return IncidentResolvedMessage(ep.Name, ep.URL, prj.Name, j.Incident.StartedAt, *j.Incident.ResolvedAt)
	}
	return IncidentCreatedMessage(ep.Name, ep.URL, prj.Name, j.Incident.StartedAt)
}

func (h *Handler) publishEvent(ctx context.Context, j Job, log *zap.Logger) {
	if h.Events == nil {
		return
	}
	kind := events.KindOpened
	at := j.Incident.StartedAt
	if j.Kind == TransitionResolved && j.Incident.ResolvedAt != nil {
		kind = events.KindResolved
		at = *j.Incident.ResolvedAt
	}
	err := retry.Do(ctx, func() error {
		return h.Events.PublishIncident(ctx, j.Incident.ID, j.Incident.EndpointID, kind, at)
	}, retry.DefaultEventPolicy(log))
	if err != nil {
		log.Warn("publish incident event", zap.Error(err))
	}
}
