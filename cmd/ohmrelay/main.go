// ohmrelay polls hardware sensors on an interval and relays each batch of
// readings to a metrics backend: a carbon endpoint by default, or an Influx
// line-protocol socket, InfluxDB v2, TimescaleDB or a Prometheus scrape
// endpoint, selected by configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/poller"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
	"github.com/ohmrelay/ohmrelay/internal/sink"
)

// set at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	log := logging.Default()
	log.Info("starting ohmrelay", "version", version, "commit", commit)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", *configPath, "sink", cfg.Sink.Type)

	hostLabel := cfg.Agent.HostLabel
	if hostLabel == "" {
		hostLabel, err = os.Hostname()
		if err != nil {
			return fmt.Errorf("resolving hostname: %w", err)
		}
	}

	var collector sensors.Collector
	switch cfg.Agent.Collector {
	case "simulated":
		collector = sensors.NewSimulator(uint64(time.Now().UnixNano()))
	default:
		collector = sensors.NewHwmon(cfg.Agent.HwmonRoot)
	}
	defer func() {
		if closeErr := collector.Close(); closeErr != nil {
			log.Error("error closing collector", "error", closeErr)
		}
	}()

	dest, err := sink.New(cfg, hostLabel, log)
	if err != nil {
		return fmt.Errorf("creating sink: %w", err)
	}
	defer func() {
		log.Info("closing sink", "sink", dest.Name())
		if closeErr := dest.Close(); closeErr != nil {
			log.Error("error closing sink", "error", closeErr)
		}
	}()
	log.Info("sink ready", "sink", dest.Name(), "host_label", hostLabel)

	return poller.New(collector, dest, cfg.Agent.GetInterval(), log).Run(ctx)
}
