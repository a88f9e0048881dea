package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_checks_total", Help: "Completed endpoint checks by classified status.",
	}, []string{"status"})
	mCheckErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_check_errors_total", Help: "Check cycles that failed on record or reconcile.",
	})
	mProbeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monitor_probe_latency_seconds",
		Help:    "HTTP probe latency.",
		Buckets: prometheus.DefBuckets,
	})
	mIncidentsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_incidents_opened_total", Help: "Incidents opened.",
	})
	mIncidentsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_incidents_resolved_total", Help: "Incidents resolved.",
	})
	mTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_ticks_total", Help: "Scheduler ticks executed.",
	})
	mTicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_ticks_skipped_total", Help: "Scheduler ticks skipped because one was in flight.",
	})
	mTickErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_tick_errors_total", Help: "Ticks abandoned because the endpoint list failed to load.",
	})
	mTickDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monitor_tick_duration_seconds",
		Help:    "Scheduler tick duration.",
		Buckets: prometheus.DefBuckets,
	})
	mDue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "monitor_last_due_endpoints", Help: "Due endpoints in the last non-empty tick.",
	})
)
