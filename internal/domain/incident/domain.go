package incident

import "time"

// Incident is a bounded interval of detected downtime for one endpoint.
// ResolvedAt == nil means the incident is still open; at most one open
// incident exists per endpoint.
type Incident struct {
	ID         int64      `json:"id"`
	EndpointID int64      `json:"endpoint_id"`
	StartedAt  time.Time  `json:"started_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

func (i *Incident) Open() bool { return i.ResolvedAt == nil }
