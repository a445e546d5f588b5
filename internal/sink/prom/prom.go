// Package prom exposes the latest readings for Prometheus to scrape,
// instead of pushing them anywhere. Write updates a gauge per sensor; the
// scrape server serves them on /metrics.
package prom

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

const shutdownTimeout = 5 * time.Second

// Sink holds the scrape server and the gauges it serves.
type Sink struct {
	host     string
	log      *logging.Logger
	values   *prometheus.GaugeVec
	lastScan prometheus.Gauge
	server   *http.Server
	listener net.Listener
}

// NewSink registers the gauges and starts the scrape server. Binding the
// listen address fails here, not on first scrape.
func NewSink(cfg config.PrometheusConfig, hostLabel string, log *logging.Logger) (*Sink, error) {
	registry := prometheus.NewRegistry()

	values := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ohm_sensor_value",
		Help: "Current value of a hardware sensor.",
	}, []string{"host", "hardware", "hardware_type", "sensor_type", "sensor_index", "sensor"})

	lastScan := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ohm_last_report_timestamp_seconds",
		Help: "Capture time of the most recent sensor report.",
	})

	registry.MustRegister(values, lastScan)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	listener, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("prometheus: listen %s: %w", cfg.ListenAddr(), err)
	}

	s := &Sink{
		host:     hostLabel,
		log:      log.With("component", "prometheus"),
		values:   values,
		lastScan: lastScan,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
	}

	go func() {
		if serveErr := s.server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.log.Error("scrape server stopped", "error", serveErr)
		}
	}()
	s.log.Info("scrape endpoint listening", "addr", listener.Addr().String())

	return s, nil
}

func (s *Sink) Name() string { return "prometheus" }

// Addr returns the bound scrape address.
func (s *Sink) Addr() string {
	return s.listener.Addr().String()
}

func (s *Sink) Write(t time.Time, readings []sensors.Reading) error {
	for _, r := range readings {
		s.values.WithLabelValues(
			s.host,
			r.Hardware,
			r.HardwareType.String(),
			r.SensorType.String(),
			strconv.Itoa(r.SensorIndex),
			r.Sensor,
		).Set(r.Value)
	}
	s.lastScan.Set(float64(t.Unix()))
	return nil
}

// Close stops the scrape server.
func (s *Sink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
