package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultEventPolicy is the retry policy for publishing incident events to
// the stream. Kept short: event publishing runs inside a notifier worker and
// must not starve channel delivery.
func DefaultEventPolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "incident_events",
		Attempts: 3,
		Backoff:  ExpoJitter{Base: 200 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("event publish retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("event publish retries exhausted", zap.Error(err))
			}
		},
	}
}
