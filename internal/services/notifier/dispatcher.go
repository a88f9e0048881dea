package notifier

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	mEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_jobs_enqueued_total", Help: "Dispatch jobs accepted into the queue.",
	})
	mDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_jobs_dropped_total", Help: "Dispatch jobs dropped because the queue was full.",
	})
	mDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_deliveries_total", Help: "Successful channel deliveries.",
	})
	mDeliveryFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_delivery_failures_total", Help: "Failed channel deliveries.",
	})
)

type jobHandler interface {
	Dispatch(ctx context.Context, j Job)
}

// Dispatcher decouples incident reconciliation from notification delivery:
// the reconciler hands transitions to a bounded queue and worker goroutines
// drain it. A full queue drops the job (logged) rather than blocking a
// check cycle.
type Dispatcher struct {
	log     *zap.Logger
	handler jobHandler
	jobs    chan Job
	workers int
	wg      sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, handler jobHandler, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}
	return &Dispatcher{
		log:     log,
		handler: handler,
		jobs:    make(chan Job, queueSize),
		workers: workers,
	}
}

// Enqueue hands a job to the workers without blocking. It reports whether
// the job was accepted.
func (d *Dispatcher) Enqueue(j Job) bool {
	select {
	case d.jobs <- j:
		mEnqueued.Inc()
		return true
	default:
		mDropped.Inc()
		d.log.Warn("dispatch queue full, dropping job",
			zap.Int64("incident_id", j.Incident.ID),
			zap.String("transition", string(j.Kind)),
		)
		return false
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.log.Info("notifier dispatcher started", zap.Int("workers", d.workers))
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-d.jobs:
			if !ok {
				return
			}
			d.handler.Dispatch(ctx, j)
		}
	}
}

// Stop closes the queue and waits for in-flight jobs to finish. Callers
// must not Enqueue after Stop.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
}
