package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/heartbeat-hq/heartbeat/internal/domain/incident"
)

var _ incident.Repo = (*IncidentRepo)(nil)

type IncidentRepo struct{ db *DB }

func NewIncidentRepo(db *DB) *IncidentRepo { return &IncidentRepo{db: db} }

const (
	qIncidentFindOpen = `
SELECT id, endpoint_id, started_at, resolved_at
FROM incidents
WHERE endpoint_id = $1 AND resolved_at IS NULL
ORDER BY started_at DESC
LIMIT 1;
`
	qIncidentInsert = `
INSERT INTO incidents (endpoint_id, started_at)
VALUES ($1, $2)
RETURNING id;
`
	qIncidentResolve = `
UPDATE incidents
SET resolved_at = $2
WHERE id = $1 AND resolved_at IS NULL;
`
	qIncidentsByEndpoint = `
SELECT id, endpoint_id, started_at, resolved_at
FROM incidents
WHERE endpoint_id = $1
ORDER BY started_at DESC
LIMIT $2;
`
)

func (r *IncidentRepo) FindOpen(ctx context.Context, endpointID int64) (*incident.Incident, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var inc incident.Incident
	err := r.db.Pool.QueryRow(ctx, qIncidentFindOpen, endpointID).
		Scan(&inc.ID, &inc.EndpointID, &inc.StartedAt, &inc.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open incident: %w", err)
	}
	return &inc, nil
}

func (r *IncidentRepo) Create(ctx context.Context, inc *incident.Incident) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qIncidentInsert, inc.EndpointID, inc.StartedAt).
		Scan(&inc.ID); err != nil {
		return fmt.Errorf("insert incident: %w", mapError(err))
	}
	return nil
}

func (r *IncidentRepo) Resolve(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qIncidentResolve, id, at)
	if err != nil {
		return fmt.Errorf("resolve incident: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *IncidentRepo) ListByEndpoint(ctx context.Context, endpointID int64, limit int) ([]*incident.Incident, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qIncidentsByEndpoint, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	out := make([]*incident.Incident, 0, limit)
	for rows.Next() {
		var inc incident.Incident
		if err := rows.Scan(&inc.ID, &inc.EndpointID, &inc.StartedAt, &inc.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		ic := inc
		out = append(out, &ic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
