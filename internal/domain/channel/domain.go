package channel

import (
	"context"
	"time"
)

type Type string

const (
	TypeEmail Type = "EMAIL"
)

// Channel is a configured notification destination for a project. The core
// only reads enabled channels; configuration happens elsewhere.
type Channel struct {
	ID        int64 `json:"id"`
	ProjectID int64 `json:"project_id"`
	Type      Type  `json:"type"`
	Enabled   bool  `json:"enabled"`
}

// Log records one delivery attempt for one (incident, channel) pair.
type Log struct {
	ID         int64     `json:"id"`
	IncidentID int64     `json:"incident_id"`
	ChannelID  int64     `json:"channel_id"`
	Success    bool      `json:"success"`
	Message    *string   `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Clock interface {
	Now() time.Time
}
