package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/heartbeat-hq/heartbeat/internal/domain/project"
)

var _ project.Repo = (*ProjectRepo)(nil)

type ProjectRepo struct{ db *DB }

func NewProjectRepo(db *DB) *ProjectRepo { return &ProjectRepo{db: db} }

const qProjectByID = `
SELECT id, name, owner_email, created_at
FROM projects
WHERE id = $1;
`

func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p project.Project
	err := r.db.Pool.QueryRow(ctx, qProjectByID, id).
		Scan(&p.ID, &p.Name, &p.OwnerEmail, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}
