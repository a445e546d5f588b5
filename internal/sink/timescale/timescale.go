// Package timescale stores readings as rows in a TimescaleDB (or plain
// Postgres) table, one multi-row INSERT per batch.
package timescale

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

const columnsPerRow = 8

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Sink writes each batch as one INSERT into the configured table.
type Sink struct {
	db    *sql.DB
	table string
	host  string
	log   *logging.Logger
}

// Open connects to the database, verifies connectivity and ensures the
// readings table exists.
func Open(cfg config.TimescaleConfig, hostLabel string, log *logging.Logger) (*Sink, error) {
	if !tableNamePattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("timescale: invalid table name %q", cfg.Table)
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("timescale: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("timescale: ping: %w", err)
	}

	s := &Sink{
		db:    db,
		table: cfg.Table,
		host:  hostLabel,
		log:   log.With("component", "timescale"),
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) ensureSchema() error {
	_, err := s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		time timestamptz NOT NULL,
		host text NOT NULL,
		hardware text NOT NULL,
		hardware_type text NOT NULL,
		sensor_type text NOT NULL,
		sensor_index int NOT NULL,
		sensor text NOT NULL,
		value double precision NOT NULL
	)`, s.table))
	if err != nil {
		return fmt.Errorf("timescale: creating table: %w", err)
	}

	// hypertable conversion only works with the timescaledb extension;
	// plain Postgres still stores the rows
	_, err = s.db.Exec(
		fmt.Sprintf("SELECT create_hypertable('%s', 'time', if_not_exists => TRUE)", s.table))
	if err != nil {
		s.log.Debug("hypertable not created, continuing with a plain table", "error", err)
	}
	return nil
}

func (s *Sink) Name() string { return "timescale" }

func (s *Sink) Write(t time.Time, readings []sensors.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(s.table)
	b.WriteString(" (time, host, hardware, hardware_type, sensor_type, sensor_index, sensor, value) VALUES ")

	args := make([]any, 0, len(readings)*columnsPerRow)
	for i, r := range readings {
		if i > 0 {
			b.WriteString(",")
		}
		base := i * columnsPerRow
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args,
			t,
			s.host,
			r.Hardware,
			r.HardwareType.String(),
			r.SensorType.String(),
			r.SensorIndex,
			r.Sensor,
			r.Value,
		)
	}

	if _, err := s.db.Exec(b.String(), args...); err != nil {
		return fmt.Errorf("timescale: insert: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return s.db.Close()
}
