package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "graphite", cfg.Sink.Type)
	assert.Equal(t, "localhost", cfg.Graphite.Host)
	assert.Equal(t, 2003, cfg.Graphite.Port)
	assert.False(t, cfg.Graphite.Tags)
	assert.Equal(t, 5*time.Second, cfg.Agent.GetInterval())
	assert.Equal(t, "hwmon", cfg.Agent.Collector)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
agent:
  host_label: workstation
  interval: 15
sink:
  type: graphite
graphite:
  host: carbon.internal
  port: 2004
  tags: true
`))
	require.NoError(t, err)

	assert.Equal(t, "workstation", cfg.Agent.HostLabel)
	assert.Equal(t, 15*time.Second, cfg.Agent.GetInterval())
	assert.Equal(t, "carbon.internal:2004", cfg.Graphite.Addr())
	assert.True(t, cfg.Graphite.Tags)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OHMRELAY_GRAPHITE_HOST", "from-env")
	t.Setenv("OHMRELAY_GRAPHITE_PORT", "2113")
	t.Setenv("OHMRELAY_HOST_LABEL", "env-host")

	cfg, err := Load(writeConfig(t, "graphite:\n  host: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env:2113", cfg.Graphite.Addr())
	assert.Equal(t, "env-host", cfg.Agent.HostLabel)
}

func TestLoad_RejectsMalformedEnvPort(t *testing.T) {
	t.Setenv("OHMRELAY_GRAPHITE_PORT", "not-a-port")

	_, err := Load(writeConfig(t, "{}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OHMRELAY_GRAPHITE_PORT")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Agent.Interval = 0 },
			wantErr: "agent.interval",
		},
		{
			name:    "unknown collector",
			mutate:  func(c *Config) { c.Agent.Collector = "lm_sensors" },
			wantErr: "agent.collector",
		},
		{
			name:    "unknown sink",
			mutate:  func(c *Config) { c.Sink.Type = "statsd" },
			wantErr: "sink.type",
		},
		{
			name:    "graphite port out of range",
			mutate:  func(c *Config) { c.Graphite.Port = 70000 },
			wantErr: "graphite.port",
		},
		{
			name: "influxdb missing url",
			mutate: func(c *Config) {
				c.Sink.Type = "influxdb"
				c.InfluxDB.Org = "ohm"
				c.InfluxDB.Bucket = "sensors"
			},
			wantErr: "influxdb.url",
		},
		{
			name:    "timescale missing dsn",
			mutate:  func(c *Config) { c.Sink.Type = "timescale" },
			wantErr: "timescale.dsn",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
