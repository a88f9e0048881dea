package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/heartbeat-hq/heartbeat/internal/config/monitor"
	"github.com/heartbeat-hq/heartbeat/internal/domain/channel"
	"github.com/heartbeat-hq/heartbeat/internal/domain/events"
	"github.com/heartbeat-hq/heartbeat/internal/obs"
	"github.com/heartbeat-hq/heartbeat/internal/probe"
	kafkaRepo "github.com/heartbeat-hq/heartbeat/internal/repository/kafka"
	pg "github.com/heartbeat-hq/heartbeat/internal/repository/postgres"
	"github.com/heartbeat-hq/heartbeat/internal/server"
	"github.com/heartbeat-hq/heartbeat/internal/services/monitor"
	"github.com/heartbeat-hq/heartbeat/internal/services/notifier"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func wire(cfg *config.Config, db *pg.DB, ev events.IncidentEvents, l *zap.Logger) (*monitor.Scheduler, *monitor.Engine, *notifier.Dispatcher) {
	clock := systemClock{}

	endpoints := pg.NewEndpointRepo(db)
	pings := pg.NewPingRepo(db)
	incidents := pg.NewIncidentRepo(db)
	projects := pg.NewProjectRepo(db)
	channels := pg.NewChannelRepo(db)
	notifLogs := pg.NewNotificationLogRepo(db)

	mailer := notifier.NewMailer(cfg.SMTP).WithLogger(l)
	handler := &notifier.Handler{
		Log:       l.With(zap.String("component", "notifier")),
		Endpoints: endpoints,
		Projects:  projects,
		Channels:  channels,
		Logs:      notifLogs,
		Events:    ev,
		Deliverers: map[channel.Type]notifier.Deliverer{
			channel.TypeEmail: notifier.EmailDeliverer{Sender: mailer},
		},
		Clock: clock,
	}
	dispatcher := notifier.NewDispatcher(
		l.With(zap.String("component", "notifier.dispatcher")),
		handler,
		cfg.Notifier.Workers,
		cfg.Notifier.QueueSize,
	)

	engine := &monitor.Engine{
		Log:       l.With(zap.String("component", "monitor.engine")),
		Prober:    probe.New(cfg.HTTP),
		Endpoints: endpoints,
		Pings:     pings,
		Reconciler: &monitor.Reconciler{
			Log:        l.With(zap.String("component", "monitor.reconciler")),
			Incidents:  incidents,
			Dispatcher: dispatcher,
			Clock:      clock,
		},
		Clock: clock,
	}

	sched := monitor.NewScheduler(
		l.With(zap.String("component", "monitor.scheduler")),
		engine,
		endpoints,
		clock,
		cfg.Sched.Tick,
	)
	return sched, engine, dispatcher
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", "config/monitor.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	// logger
	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig("heartbeat-monitor"))
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting monitor",
		zap.Duration("tick", cfg.Sched.Tick),
		zap.String("admin_addr", cfg.Admin.Addr),
		zap.Bool("events", cfg.Events.Enabled),
	)

	// otel
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	// db
	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// incident event stream (optional)
	var ev events.IncidentEvents
	if cfg.Events.Enabled {
		_ = kafkaRepo.EnsureTopic(ctx, cfg.Events.Brokers, kafkaRepo.TopicSpec{Name: cfg.Events.Topic}, l)
		prod := kafkaRepo.NewProducer(cfg.Events.Brokers, cfg.Events.Topic).WithLogger(l)
		defer func() { _ = prod.Close() }()
		ev = kafkaRepo.NewIncidentEventsKafka(prod)
	}

	// wiring
	sched, engine, dispatcher := wire(cfg, db, ev, l)

	// admin http: health, metrics, cron trigger
	router := server.NewRouter(
		l.With(zap.String("component", "admin")),
		func(hctx context.Context) error { return db.Pool.Ping(hctx) },
		engine.CheckAll,
		cfg.Admin.TriggerToken,
	)
	adminSrv := obs.BootstrapHTTP(cfg.Admin.Addr, router, l)

	// run
	dispatcher.Start(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- sched.Run(ctx) }()

	l.Info("monitor started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("scheduler error", zap.Error(err))
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = adminSrv.Shutdown(shCtx)
	l.Info("bye")
}
