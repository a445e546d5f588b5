// Package sink defines the destination interface for sensor reports and the
// factory that builds the one configured destination.
package sink

import (
	"fmt"
	"time"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/graphite"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
	"github.com/ohmrelay/ohmrelay/internal/sink/influxdb"
	"github.com/ohmrelay/ohmrelay/internal/sink/influxline"
	"github.com/ohmrelay/ohmrelay/internal/sink/prom"
	"github.com/ohmrelay/ohmrelay/internal/sink/timescale"
)

// Sink receives one batch of readings per poll. Write must be safe for
// concurrent calls; a failed batch is dropped by the caller, never retried.
type Sink interface {
	// Write reports one batch captured at t.
	Write(t time.Time, readings []sensors.Reading) error
	Name() string
	Close() error
}

// New builds the sink selected by cfg.Sink.Type. Exactly one sink is active
// per process; there is no fan-out.
func New(cfg *config.Config, hostLabel string, log *logging.Logger) (Sink, error) {
	switch cfg.Sink.Type {
	case "graphite":
		return graphite.NewWriter(cfg.Graphite, hostLabel, log), nil
	case "influx_line":
		return influxline.NewSink(cfg.InfluxLine, hostLabel, log), nil
	case "influxdb":
		return influxdb.Connect(cfg.InfluxDB, hostLabel, log)
	case "timescale":
		return timescale.Open(cfg.Timescale, hostLabel, log)
	case "prometheus":
		return prom.NewSink(cfg.Prometheus, hostLabel, log)
	default:
		return nil, fmt.Errorf("sink: unknown type %q", cfg.Sink.Type)
	}
}
