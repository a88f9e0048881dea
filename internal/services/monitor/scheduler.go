package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
)

// Scheduler drives periodic, non-overlapping check cycles off a single
// global tick instead of one timer per endpoint. Interval granularity is
// enforced by the due gate against the in-memory lastChecked map; the map
// is ephemeral, so a restart makes every active endpoint due at once.
type Scheduler struct {
	log       *zap.Logger
	engine    *Engine
	endpoints endpoint.Repo
	clock     channel.Clock
	tickEvery time.Duration

	// busy is the re-entrancy guard: at most one tick's fan-out is in
	// flight. The CAS also orders lastChecked access across successive
	// tick goroutines.
	busy        atomic.Bool
	lastChecked map[int64]time.Time
}

func NewScheduler(log *zap.Logger, engine *Engine, endpoints endpoint.Repo, clock channel.Clock, tickEvery time.Duration) *Scheduler {
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	return &Scheduler{
		log:         log,
		engine:      engine,
		endpoints:   endpoints,
		clock:       clock,
		tickEvery:   tickEvery,
		lastChecked: make(map[int64]time.Time),
	}
}

// Run ticks until ctx is cancelled. An immediate first tick makes every
// endpoint due on startup.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickEvery)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			go s.tick(ctx)
		}
	}
}

// tick runs one due-check pass. A tick that fires while another is in
// flight does nothing at all: no queuing, no backlog.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		mTicksSkipped.Inc()
		return
	}
	defer s.busy.Store(false)

	mTicks.Inc()
	start := time.Now()
	defer func() { mTickDur.Observe(time.Since(start).Seconds()) }()

	tr := otel.Tracer("monitor.scheduler")
	ctx, span := tr.Start(ctx, "monitor.tick")
	defer span.End()

	eps, err := s.endpoints.ListActive(ctx)
	if err != nil {
		span.RecordError(err)
		mTickErrors.Inc()
		s.log.Error("list active endpoints, abandoning tick", zap.Error(err))
		return
	}

	now := s.clock.Now()
	due := make([]*endpoint.Endpoint, 0, len(eps))
	for _, ep := range eps {
		if now.Sub(s.lastChecked[ep.ID]) >= ep.Interval {
			due = append(due, ep)
		}
	}
	span.SetAttributes(
		attribute.Int("tick.active", len(eps)),
		attribute.Int("tick.due", len(due)),
	)
	if len(due) == 0 {
		return
	}
	mDue.Set(float64(len(due)))

	// Stamp before probing: a slow or hung probe must not make the same
	// endpoint due again on the next tick.
	for _, ep := range due {
		s.lastChecked[ep.ID] = now
	}

	s.log.Debug("tick", zap.Int("active", len(eps)), zap.Int("due", len(due)))
	s.engine.runCycles(ctx, due)
}
