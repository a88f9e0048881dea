package notifier

import (
	"context"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/project"
)

// Deliverer delivers one rendered message over a channel type. Channel
// types beyond EMAIL plug in here; unknown types surface as failed
// notification-log rows rather than guessed semantics.
type Deliverer interface {
	Deliver(ctx context.Context, prj *project.Project, msg Message) error
}

type EmailDeliverer struct {
	Sender channel.EmailSender
}

func (d EmailDeliverer) Deliver(ctx context.Context, prj *project.Project, msg Message) error {
	return d.Sender.Send(ctx, prj.OwnerEmail, msg.Subject, msg.Body)
}
