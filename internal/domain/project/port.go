package project

import "context"

type Repo interface {
	GetByID(ctx context.Context, id int64) (*Project, error)
}
