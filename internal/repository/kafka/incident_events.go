package kafka

import (
	"context"
	"time"

	"github.com/heartbeat-hq/heartbeat/internal/domain/events"
)

type IncidentEventsKafka struct {
	p *Producer
}

func NewIncidentEventsKafka(p *Producer) *IncidentEventsKafka { return &IncidentEventsKafka{p: p} }

var _ events.IncidentEvents = (*IncidentEventsKafka)(nil)

type incidentEventPayload struct {
	IncidentID int64       `json:"incident_id"`
	EndpointID int64       `json:"endpoint_id"`
	Kind       events.Kind `json:"kind"`
	At         time.Time   `json:"at"`
}

func (e *IncidentEventsKafka) PublishIncident(ctx context.Context, incidentID, endpointID int64, kind events.Kind, at time.Time) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(endpointID), incidentEventPayload{
		IncidentID: incidentID,
		EndpointID: endpointID,
		Kind:       kind,
		At:         at.UTC(),
	})
}
