package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for ohmrelay. It is loaded from YAML and
// selected keys can be overridden by OHMRELAY_* environment variables.
type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	Sink       SinkConfig       `yaml:"sink"`
	Graphite   GraphiteConfig   `yaml:"graphite"`
	InfluxLine InfluxLineConfig `yaml:"influx_line"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Timescale  TimescaleConfig  `yaml:"timescale"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AgentConfig controls polling and metric identity.
type AgentConfig struct {
	// HostLabel is used verbatim in metric paths and tags. Defaults to the
	// machine hostname when empty.
	HostLabel string `yaml:"host_label"`
	// Interval is the poll interval in seconds.
	Interval int `yaml:"interval"`
	// Collector selects the reading source: "hwmon" or "simulated".
	Collector string `yaml:"collector"`
	// HwmonRoot overrides the sysfs hwmon directory. Empty means the
	// platform default.
	HwmonRoot string `yaml:"hwmon_root"`
}

// GetInterval returns the poll interval as a duration.
func (a AgentConfig) GetInterval() time.Duration {
	return time.Duration(a.Interval) * time.Second
}

// SinkConfig selects the one active metric destination.
type SinkConfig struct {
	// Type is one of: graphite, influx_line, influxdb, timescale, prometheus.
	Type string `yaml:"type"`
}

// GraphiteConfig contains carbon plaintext destination settings.
type GraphiteConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Tags switches the wire format to the tagged variant.
	Tags bool `yaml:"tags"`
}

// Addr returns the dialable host:port of the carbon endpoint.
func (g GraphiteConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// InfluxLineConfig contains settings for the raw line-protocol socket sink
// (e.g. a telegraf socket_listener input).
type InfluxLineConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// InfluxDBConfig contains InfluxDB v2 connection settings.
type InfluxDBConfig struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// TimescaleConfig contains TimescaleDB/Postgres settings.
type TimescaleConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// PrometheusConfig contains scrape endpoint settings.
type PrometheusConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ListenAddr returns the host:port the scrape server binds to.
func (p PrometheusConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SinkTypes lists the accepted sink.type values.
var SinkTypes = []string{"graphite", "influx_line", "influxdb", "timescale", "prometheus"}

// Load reads the configuration file, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Interval:  5,
			Collector: "hwmon",
		},
		Sink: SinkConfig{
			Type: "graphite",
		},
		Graphite: GraphiteConfig{
			Host: "localhost",
			Port: 2003,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Timescale: TimescaleConfig{
			Table: "ohm_readings",
		},
		Prometheus: PrometheusConfig{
			Host: "0.0.0.0",
			Port: 4445,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides following the
// pattern OHMRELAY_SECTION_KEY. A malformed override is an error, not a
// silent fallback to the configured value.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("OHMRELAY_HOST_LABEL"); v != "" {
		cfg.Agent.HostLabel = v
	}
	if v := os.Getenv("OHMRELAY_SINK_TYPE"); v != "" {
		cfg.Sink.Type = v
	}
	if v := os.Getenv("OHMRELAY_GRAPHITE_HOST"); v != "" {
		cfg.Graphite.Host = v
	}
	if v := os.Getenv("OHMRELAY_GRAPHITE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OHMRELAY_GRAPHITE_PORT: invalid port %q: %w", v, err)
		}
		cfg.Graphite.Port = port
	}
	if v := os.Getenv("OHMRELAY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("OHMRELAY_TIMESCALE_DSN"); v != "" {
		cfg.Timescale.DSN = v
	}
	return nil
}

// Validate checks the configuration for errors. Only the selected sink's
// section is required to be complete.
func (c *Config) Validate() error {
	var errs []string

	if c.Agent.Interval < 1 {
		errs = append(errs, "agent.interval must be at least 1 second")
	}
	switch c.Agent.Collector {
	case "hwmon", "simulated":
	default:
		errs = append(errs, "agent.collector must be hwmon or simulated")
	}

	validSink := false
	for _, t := range SinkTypes {
		if c.Sink.Type == t {
			validSink = true
			break
		}
	}
	if !validSink {
		errs = append(errs, fmt.Sprintf("sink.type must be one of: %s", strings.Join(SinkTypes, ", ")))
	}

	switch c.Sink.Type {
	case "graphite":
		if c.Graphite.Host == "" {
			errs = append(errs, "graphite.host is required")
		}
		if c.Graphite.Port < 1 || c.Graphite.Port > 65535 {
			errs = append(errs, "graphite.port must be between 1 and 65535")
		}
	case "influx_line":
		if c.InfluxLine.Endpoint == "" {
			errs = append(errs, "influx_line.endpoint is required")
		}
	case "influxdb":
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required")
		}
		if c.InfluxDB.Org == "" {
			errs = append(errs, "influxdb.org is required")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required")
		}
	case "timescale":
		if c.Timescale.DSN == "" {
			errs = append(errs, "timescale.dsn is required")
		}
		if c.Timescale.Table == "" {
			errs = append(errs, "timescale.table is required")
		}
	case "prometheus":
		if c.Prometheus.Port < 1 || c.Prometheus.Port > 65535 {
			errs = append(errs, "prometheus.port must be between 1 and 65535")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
