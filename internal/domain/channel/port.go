package channel

import "context"

type Repo interface {
	ListEnabled(ctx context.Context, projectID int64) ([]*Channel, error)
}

type LogRepo interface {
	Create(ctx context.Context, l *Log) error
}
