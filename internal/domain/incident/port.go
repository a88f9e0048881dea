package incident

import (
	"context"
	"time"
)

type Repo interface {
	// FindOpen returns the most recent unresolved incident for the
	// endpoint, or (nil, nil) when there is none.
	FindOpen(ctx context.Context, endpointID int64) (*Incident, error)
	Create(ctx context.Context, inc *Incident) error
	Resolve(ctx context.Context, id int64, at time.Time) error
	ListByEndpoint(ctx context.Context, endpointID int64, limit int) ([]*Incident, error)
}
