package graphite

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ohmrelay/ohmrelay/internal/config"
	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

// defaultLockTimeout bounds how long a report may wait for an earlier one
// to release the connection.
const defaultLockTimeout = 1 * time.Second

// ErrLockTimeout is returned when a report could not acquire the connection
// within the gate timeout. The batch is dropped; no network I/O happened.
var ErrLockTimeout = errors.New("graphite: timed out waiting for in-flight report")

// Writer owns a single TCP connection to a carbon endpoint and reports one
// batch of readings at a time over it. It is safe for concurrent use: at
// most one report is in flight, and late callers fail fast instead of
// queuing.
type Writer struct {
	addr        string
	hostLabel   string
	tagged      bool
	log         *logging.Logger
	lockTimeout time.Duration

	// gate is a single-slot semaphore guarding conn and failed.
	gate   chan struct{}
	conn   net.Conn
	failed bool

	// renderPause, when non-nil, runs between readings. Tests use it to
	// stretch one report across wall-clock seconds.
	renderPause func()
}

// NewWriter creates a writer for the configured carbon endpoint. No
// connection is made yet; the first report dials lazily.
func NewWriter(cfg config.GraphiteConfig, hostLabel string, log *logging.Logger) *Writer {
	return &Writer{
		addr:        cfg.Addr(),
		hostLabel:   hostLabel,
		tagged:      cfg.Tags,
		log:         log.With("component", "graphite"),
		lockTimeout: defaultLockTimeout,
		gate:        make(chan struct{}, 1),
		// start failed so the first report forces a connect
		failed: true,
	}
}

func (w *Writer) Name() string { return "graphite" }

// Write reports one batch. All lines share t converted once to epoch
// seconds, and are written in input order followed by a flush. The
// connection stays open for the next report. Any connect, write or flush
// error marks the writer failed, so the next report redials; the current
// batch is dropped, not retried.
func (w *Writer) Write(t time.Time, readings []sensors.Reading) error {
	timer := time.NewTimer(w.lockTimeout)
	select {
	case w.gate <- struct{}{}:
		timer.Stop()
	case <-timer.C:
		return ErrLockTimeout
	}
	defer func() { <-w.gate }()

	if w.failed || w.conn == nil {
		if err := w.reconnect(); err != nil {
			return err
		}
	}

	epoch := t.Unix()

	bw := bufio.NewWriter(w.conn)
	for i, r := range readings {
		if i > 0 && w.renderPause != nil {
			w.renderPause()
		}
		if _, err := bw.WriteString(FormatLine(w.hostLabel, w.tagged, epoch, r) + "\n"); err != nil {
			w.failed = true
			return fmt.Errorf("graphite: write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		w.failed = true
		return fmt.Errorf("graphite: flush: %w", err)
	}

	w.failed = false
	return nil
}

// reconnect must be called with the gate held.
func (w *Writer) reconnect() error {
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	conn, err := net.Dial("tcp", w.addr)
	if err != nil {
		w.failed = true
		return fmt.Errorf("graphite: connect %s: %w", w.addr, err)
	}
	w.conn = conn
	w.log.Debug("connected", "addr", w.addr)
	return nil
}

// Close releases the connection. It waits for any in-flight report to
// finish, is safe to call before a successful connect, and is idempotent.
func (w *Writer) Close() error {
	w.gate <- struct{}{}
	defer func() { <-w.gate }()

	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	w.failed = true
	return err
}
