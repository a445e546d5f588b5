// Package influxline sends readings as Influx line protocol over a plain TCP
// socket, e.g. to a telegraf socket_listener input. Unlike the graphite
// writer it dials per batch: the encoder owns no connection state, so a
// failed batch needs no reconnect bookkeeping.
package influxline

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	protocol "github.com/influxdata/line-protocol"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

// Sink writes one line-protocol point per reading.
type Sink struct {
	endpoint string
	host     string
	log      *logging.Logger
}

func NewSink(cfg config.InfluxLineConfig, hostLabel string, log *logging.Logger) *Sink {
	return &Sink{
		endpoint: cfg.Endpoint,
		host:     hostLabel,
		log:      log.With("component", "influx_line"),
	}
}

func (s *Sink) Name() string { return "influx_line" }

func (s *Sink) Write(t time.Time, readings []sensors.Reading) error {
	conn, err := net.Dial("tcp", s.endpoint)
	if err != nil {
		return fmt.Errorf("influx_line: connect %s: %w", s.endpoint, err)
	}
	defer conn.Close()

	encoder := protocol.NewEncoder(conn)
	for _, r := range readings {
		if _, err := encoder.Encode(newMetric(s.host, t, r)); err != nil {
			return fmt.Errorf("influx_line: encode: %w", err)
		}
	}
	s.log.Debug("batch sent", "readings", len(readings))
	return nil
}

func (s *Sink) Close() error { return nil }

// metric adapts one reading to the line-protocol Metric interface. The
// measurement is the sensor category, the context lives in tags, and the
// sampled number is the single "value" field.
type metric struct {
	name      string
	tags      []*protocol.Tag
	fields    []*protocol.Field
	timestamp time.Time
}

func newMetric(host string, t time.Time, r sensors.Reading) *metric {
	m := &metric{
		name:      "ohm_" + strings.ToLower(r.SensorType.String()),
		timestamp: t,
	}
	// tag keys in lexical order, the canonical line-protocol form
	m.addTag("app", "ohm")
	m.addTag("hardware", r.Hardware)
	m.addTag("hardware_type", r.HardwareType.String())
	m.addTag("host", host)
	m.addTag("sensor", r.Sensor)
	m.addTag("sensor_index", strconv.Itoa(r.SensorIndex))
	m.fields = append(m.fields, &protocol.Field{Key: "value", Value: r.Value})
	return m
}

func (m *metric) Time() time.Time {
	return m.timestamp
}

func (m *metric) Name() string {
	return m.name
}

func (m *metric) TagList() []*protocol.Tag {
	return m.tags
}

func (m *metric) FieldList() []*protocol.Field {
	return m.fields
}

func (m *metric) addTag(key, value string) {
	m.tags = append(m.tags, &protocol.Tag{
		Key:   key,
		Value: value,
	})
}
