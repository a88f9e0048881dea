package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
)

var _ channel.LogRepo = (*NotificationLogRepo)(nil)

type NotificationLogRepo struct{ db *DB }

func NewNotificationLogRepo(db *DB) *NotificationLogRepo { return &NotificationLogRepo{db: db} }

const qNotifLogInsert = `
INSERT INTO notification_logs (incident_id, channel_id, success, message, created_at)
VALUES ($1, $2, $3, $4, COALESCE($5, now()))
RETURNING id, created_at;
`

func (r *NotificationLogRepo) Create(ctx context.Context, l *channel.Log) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qNotifLogInsert,
		l.IncidentID,
		l.ChannelID,
		l.Success,
		l.Message,
		nullTime(l.CreatedAt),
	).Scan(&l.ID, &l.CreatedAt); err != nil {
		return fmt.Errorf("insert notification log: %w", mapError(err))
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
