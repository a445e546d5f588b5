// Package influxdb relays readings to an InfluxDB v2 server over its HTTP
// API, using the client's non-blocking batched write path.
package influxdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

const (
	connectTimeout = 10 * time.Second

	millisecondsPerSecond = 1000
)

// ErrConnectionFailed indicates the initial ping to the server failed.
var ErrConnectionFailed = errors.New("influxdb: connection failed")

// Sink writes readings through the non-blocking batched WriteAPI. Write
// errors surface asynchronously and are logged; a lost batch self-heals on
// the next poll.
type Sink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	host     string
	log      *logging.Logger
}

// Connect creates the client, verifies connectivity with a ping and wires
// the async error channel into the logger.
func Connect(cfg config.InfluxDBConfig, hostLabel string, log *logging.Logger) (*Sink, error) {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	s := &Sink{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		host:     hostLabel,
		log:      log.With("component", "influxdb"),
	}

	errorsCh := s.writeAPI.Errors()
	go func() {
		for writeErr := range errorsCh {
			s.log.Warn("async write failed", "error", writeErr)
		}
	}()

	return s, nil
}

func (s *Sink) Name() string { return "influxdb" }

func (s *Sink) Write(t time.Time, readings []sensors.Reading) error {
	for _, r := range readings {
		s.writeAPI.WritePoint(newPoint(s.host, t, r))
	}
	return nil
}

// Close flushes pending writes and releases the client.
func (s *Sink) Close() error {
	s.writeAPI.Flush()
	s.client.Close()
	return nil
}

// newPoint maps one reading onto an InfluxDB point: measurement from the
// sensor category, metadata as tags, the sample as the single value field.
func newPoint(host string, t time.Time, r sensors.Reading) *write.Point {
	return write.NewPoint(
		"ohm_"+strings.ToLower(r.SensorType.String()),
		map[string]string{
			"app":           "ohm",
			"host":          host,
			"hardware":      r.Hardware,
			"hardware_type": r.HardwareType.String(),
			"sensor":        r.Sensor,
			"sensor_index":  strconv.Itoa(r.SensorIndex),
		},
		map[string]interface{}{
			"value": r.Value,
		},
		t,
	)
}
