package monitor_config

import (
	"time"

	"github.com/heartbeat-hq/heartbeat/internal/obs"
	"github.com/heartbeat-hq/heartbeat/internal/probe"
	pginfra "github.com/heartbeat-hq/heartbeat/internal/repository/postgres"
	"github.com/heartbeat-hq/heartbeat/internal/server"
	"github.com/heartbeat-hq/heartbeat/internal/services/notifier"
)

type SchedCfg struct {
	Tick time.Duration `mapstructure:"tick"`
}

type NotifierCfg struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type EventsCfg struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogCfg struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
	Env    string `mapstructure:"env"`
	Ver    string `mapstructure:"version"`
}

func (c LogCfg) AsLoggerConfig(app string) obs.LogConfig {
	return obs.LogConfig{Level: c.Level, Pretty: c.Pretty, App: app, Env: c.Env, Ver: c.Ver}
}

type OTELCfg struct {
	Enable      bool    `mapstructure:"enable"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (c OTELCfg) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.Enable,
		Endpoint:    c.Endpoint,
		ServiceName: c.ServiceName,
		SampleRatio: c.SampleRatio,
	}
}

type Config struct {
	DB       pginfra.Config      `mapstructure:"db"`
	HTTP     probe.Config        `mapstructure:"http"`
	SMTP     notifier.SMTPConfig `mapstructure:"smtp"`
	Events   EventsCfg           `mapstructure:"events"`
	Sched    SchedCfg            `mapstructure:"sched"`
	Notifier NotifierCfg         `mapstructure:"notifier"`
	Admin    server.Config       `mapstructure:"admin"`
	Log      LogCfg              `mapstructure:"log"`
	OTEL     OTELCfg             `mapstructure:"otel"`
}
