package monitor

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
	"github.com/heartbeat-hq/heartbeat/internal/domain/ping"
	"github.com/heartbeat-hq/heartbeat/internal/obs"
	"github.com/heartbeat-hq/heartbeat/internal/probe"
)

// Prober abstracts the HTTP probe so the engine can be exercised without a
// network in tests.
type Prober interface {
	Do(ctx context.Context, url string, method endpoint.Method) probe.Result
}

// Engine runs one endpoint's check cycle: probe, record the observation,
// reconcile incidents. Steps are strictly sequential within a cycle; cycles
// for different endpoints are independent.
type Engine struct {
	Log        *zap.Logger
	Prober     Prober
	Endpoints  endpoint.Repo
	Pings      ping.Repo
	Reconciler *Reconciler
	Clock      channel.Clock
}

func (e *Engine) CheckOne(ctx context.Context, ep *endpoint.Endpoint) error {
	tr := otel.Tracer("monitor.engine")
	ctx, span := tr.Start(ctx, "monitor.check",
		trace.WithAttributes(
			attribute.Int64("endpoint.id", ep.ID),
			attribute.String("endpoint.url", ep.URL),
		),
	)
	defer span.End()

	res := e.Prober.Do(ctx, ep.URL, ep.Method)
	mChecks.WithLabelValues(string(res.Status)).Inc()
	mProbeLatency.Observe(res.ResponseTime.Seconds())

	p := &ping.Ping{
		EndpointID:   ep.ID,
		Status:       res.Status,
		StatusCode:   res.StatusCode,
		ResponseTime: res.ResponseTime.Milliseconds(),
		Message:      res.Message,
		CheckedAt:    e.Clock.Now().UTC(),
	}
	if err := e.Pings.Insert(ctx, p); err != nil {
		span.RecordError(err)
		return fmt.Errorf("record ping: %w", err)
	}

	if err := e.Reconciler.Reconcile(ctx, ep, res.Status); err != nil {
		span.RecordError(err)
		return fmt.Errorf("reconcile: %w", err)
	}

	obs.WithTrace(ctx, e.Log).Debug("checked",
		zap.Int64("endpoint_id", ep.ID),
		zap.String("url", ep.URL),
		zap.String("status", string(res.Status)),
		zap.Int64("response_ms", res.ResponseTime.Milliseconds()),
	)
	return nil
}

// CheckAll runs one cycle for every active endpoint regardless of
// intervals. It backs the cron-style trigger path; per-endpoint failures
// are logged and counted, never propagated.
func (e *Engine) CheckAll(ctx context.Context) (int, error) {
	eps, err := e.Endpoints.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list endpoints: %w", err)
	}

	e.runCycles(ctx, eps)
	return len(eps), nil
}

// runCycles fans the given endpoints out as concurrent, mutually isolated
// check cycles and waits for all of them to settle.
func (e *Engine) runCycles(ctx context.Context, eps []*endpoint.Endpoint) {
	var wg sync.WaitGroup
	for _, ep := range eps {
		wg.Add(1)
		go func(ep *endpoint.Endpoint) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					mCheckErrors.Inc()
					e.Log.Error("check cycle panic",
						zap.Int64("endpoint_id", ep.ID),
						zap.Any("panic", rec),
					)
				}
			}()
			if err := e.CheckOne(ctx, ep); err != nil {
				mCheckErrors.Inc()
				e.Log.Warn("check cycle failed",
					zap.Int64("endpoint_id", ep.ID),
					zap.String("url", ep.URL),
					zap.Error(err),
				)
			}
		}(ep)
	}
	wg.Wait()
}
