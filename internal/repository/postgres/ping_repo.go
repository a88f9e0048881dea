package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/heartbeat-hq/heartbeat/internal/domain/ping"
)

var _ ping.Repo = (*PingRepo)(nil)

type PingRepo struct{ db *DB }

func NewPingRepo(db *DB) *PingRepo { return &PingRepo{db: db} }

const (
	qPingInsert = `
INSERT INTO pings (endpoint_id, status, status_code, response_time_ms, message, checked_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;
`
	qPingsByEndpoint = `
SELECT id, endpoint_id, status, status_code, response_time_ms, message, checked_at
FROM pings
WHERE endpoint_id = $1
ORDER BY checked_at DESC
LIMIT $2;
`
	qPingsByEndpointRange = `
SELECT id, endpoint_id, status, status_code, response_time_ms, message, checked_at
FROM pings
WHERE endpoint_id = $1 AND checked_at >= $2 AND checked_at < $3
ORDER BY checked_at;
`
)

func (r *PingRepo) Insert(ctx context.Context, p *ping.Ping) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qPingInsert,
		p.EndpointID, p.Status, p.StatusCode, p.ResponseTime, p.Message, p.CheckedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert ping: %w", mapError(err))
	}
	return nil
}

func (r *PingRepo) ListByEndpoint(ctx context.Context, endpointID int64, limit int) ([]*ping.Ping, error) {
	if limit <= 0 {
		limit = 50
	}

	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qPingsByEndpoint, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("query pings: %w", err)
	}
	defer rows.Close()

	return collectPings(rows, limit)
}

func (r *PingRepo) ListByEndpointRange(ctx context.Context, endpointID int64, from, to time.Time) ([]*ping.Ping, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qPingsByEndpointRange, endpointID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query pings: %w", err)
	}
	defer rows.Close()

	return collectPings(rows, 0)
}

func collectPings(rows pgx.Rows, sizeHint int) ([]*ping.Ping, error) {
	out := make([]*ping.Ping, 0, sizeHint)
	for rows.Next() {
		var p ping.Ping
		if err := rows.Scan(&p.ID, &p.EndpointID, &p.Status, &p.StatusCode, &p.ResponseTime, &p.Message, &p.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan ping: %w", err)
		}
		pc := p
		out = append(out, &pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
