// checkall runs a single interval-ignoring pass over all active endpoints
// and exits. Meant for external cron setups where no long-lived scheduler
// process is wanted.
package main

import (
	"context"
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
	"github.com/heartbeat-hq/heartbeat/internal/services/monitor"
	"github.com/heartbeat-hq/heartbeat/internal/services/notifier"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", "config/monitor.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig("heartbeat-checkall"))
	if err != nil {
		log.Fatal(err)
	}

	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	var ev events.IncidentEvents
	if cfg.Events.Enabled {
		prod := kafkaRepo.NewProducer(cfg.Events.Brokers, cfg.Events.Topic).WithLogger(l)
		defer func() { _ = prod.Close() }()
		ev = kafkaRepo.NewIncidentEventsKafka(prod)
	}

	clock := systemClock{}
	endpoints := pg.NewEndpointRepo(db)

	mailer := notifier.NewMailer(cfg.SMTP).WithLogger(l)
	handler := &notifier.Handler{
		Log:       l.With(zap.String("component", "notifier")),
		Endpoints: endpoints,
		Projects:  pg.NewProjectRepo(db),
		Channels:  pg.NewChannelRepo(db),
		Logs:      pg.NewNotificationLogRepo(db),
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
	dispatcher.Start(ctx)

	engine := &monitor.Engine{
		Log:       l.With(zap.String("component", "monitor.engine")),
		Prober:    probe.New(cfg.HTTP),
		Endpoints: endpoints,
		Pings:     pg.NewPingRepo(db),
		Reconciler: &monitor.Reconciler{
			Log:        l.With(zap.String("component", "monitor.reconciler")),
			Incidents:  pg.NewIncidentRepo(db),
			Dispatcher: dispatcher,
			Clock:      clock,
		},
		Clock: clock,
	}

	checked, err := engine.CheckAll(ctx)
	// Drain queued notifications before exiting.
	dispatcher.Stop()
	if err != nil {
		l.Fatal("check run failed", zap.Error(err))
	}
	l.Info("check run complete", zap.Int("checked", checked))
}
