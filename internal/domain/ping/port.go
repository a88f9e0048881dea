package ping

import (
	"context"
	"time"
)

type Repo interface {
	Insert(ctx context.Context, p *Ping) error
	ListByEndpoint(ctx context.Context, endpointID int64, limit int) ([]*Ping, error)
	ListByEndpointRange(ctx context.Context, endpointID int64, from, to time.Time) ([]*Ping, error)
}
