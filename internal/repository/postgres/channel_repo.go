package postgres

import (
	"context"
	"fmt"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
)

var _ channel.Repo = (*ChannelRepo)(nil)

type ChannelRepo struct{ db *DB }

func NewChannelRepo(db *DB) *ChannelRepo { return &ChannelRepo{db: db} }

const qChannelsEnabled = `
SELECT id, project_id, type, enabled
FROM notification_channels
WHERE project_id = $1 AND enabled = TRUE
ORDER BY id;
`

func (r *ChannelRepo) ListEnabled(ctx context.Context, projectID int64) ([]*channel.Channel, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qChannelsEnabled, projectID)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var out []*channel.Channel
	for rows.Next() {
		var c channel.Channel
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Type, &c.Enabled); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		cc := c
		out = append(out, &cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
