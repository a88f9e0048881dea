package endpoint

import "context"

type Repo interface {
	GetByID(ctx context.Context, id int64) (*Endpoint, error)
	ListActive(ctx context.Context) ([]*Endpoint, error)
}
