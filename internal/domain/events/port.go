package events

import (
	"context"
	"time"
)

type Kind string

const (
	KindOpened   Kind = "opened"
	KindResolved Kind = "resolved"
)

// IncidentEvents publishes incident transitions to the external event
// stream. Publishing is best-effort; the monitor never blocks a check cycle
// on it.
type IncidentEvents interface {
	PublishIncident(ctx context.Context, incidentID, endpointID int64, kind Kind, at time.Time) error
}
