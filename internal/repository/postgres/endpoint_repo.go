package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
)

var _ endpoint.Repo = (*EndpointRepo)(nil)

type EndpointRepo struct {
	db *DB
}

func NewEndpointRepo(db *DB) *EndpointRepo { return &EndpointRepo{db: db} }

const (
	qEndpointByID = `
SELECT id, project_id, name, url, method, interval_sec, active, created_at
FROM endpoints
WHERE id = $1;
`

	qEndpointsActive = `
SELECT id, project_id, name, url, method, interval_sec, active, created_at
FROM endpoints
WHERE active = TRUE
ORDER BY id;
`
)

func scanEndpoint(row pgx.Row, e *endpoint.Endpoint) error {
	var intervalSec int
	if err := row.Scan(
		&e.ID,
		&e.ProjectID,
		&e.Name,
		&e.URL,
		&e.Method,
		&intervalSec,
		&e.Active,
		&e.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan endpoint: %w", err)
	}
	e.Interval = time.Duration(intervalSec) * time.Second
	return nil
}

func (r *EndpointRepo) GetByID(ctx context.Context, id int64) (*endpoint.Endpoint, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var e endpoint.Endpoint
	if err := scanEndpoint(r.db.Pool.QueryRow(ctx, qEndpointByID, id), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EndpointRepo) ListActive(ctx context.Context) ([]*endpoint.Endpoint, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qEndpointsActive)
	if err != nil {
		return nil, fmt.Errorf("query endpoints: %w", err)
	}
	defer rows.Close()

	var out []*endpoint.Endpoint
	for rows.Next() {
		var e endpoint.Endpoint
		if err := scanEndpoint(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
