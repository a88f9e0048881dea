package ping

import "time"

type Status string

const (
	StatusUp       Status = "UP"
	StatusDown     Status = "DOWN"
	StatusDegraded Status = "DEGRADED"
)

// Ping is one immutable observation of an endpoint's health. StatusCode is
// nil when the request never produced an HTTP response (transport error or
// timeout).
type Ping struct {
	ID           int64     `json:"id"`
	EndpointID   int64     `json:"endpoint_id"`
	Status       Status    `json:"status"`
	StatusCode   *int      `json:"status_code"`
	ResponseTime int64     `json:"response_time_ms"`
	Message      *string   `json:"message"`
	CheckedAt    time.Time `json:"checked_at"`
}
