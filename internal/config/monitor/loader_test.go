package monitor_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Sched.Tick)
	assert.Equal(t, 4, cfg.Notifier.Workers)
	assert.Equal(t, 256, cfg.Notifier.QueueSize)
	assert.Equal(t, ":8081", cfg.Admin.Addr)
	assert.Empty(t, cfg.Admin.TriggerToken)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "heartbeat.incidents", cfg.Events.Topic)
	assert.Equal(t, "Heartbeat-Monitor/1.0", cfg.HTTP.UserAgent)
	assert.True(t, cfg.HTTP.FollowRedirects)
	assert.True(t, cfg.HTTP.VerifyTLS)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.DB.QueryTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.yaml")
	yaml := `
sched:
  tick: 5s
admin:
  addr: ":9999"
  trigger_token: "hunter2"
events:
  enabled: true
  brokers: ["kafka:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Sched.Tick)
	assert.Equal(t, ":9999", cfg.Admin.Addr)
	assert.Equal(t, "hunter2", cfg.Admin.TriggerToken)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Events.Brokers)
	// Untouched sections keep their defaults.
	assert.Equal(t, 4, cfg.Notifier.Workers)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ADMIN_TRIGGER_TOKEN", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.TriggerToken)
}
