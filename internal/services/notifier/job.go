package notifier

import "github.com/heartbeat-hq/heartbeat/internal/domain/incident"

type Transition string

const (
	TransitionCreated  Transition = "created"
	TransitionResolved Transition = "resolved"
)

// Job is one incident transition queued for notification fan-out.
type Job struct {
	Incident *incident.Incident
	Kind     Transition
}
