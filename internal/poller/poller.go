// Package poller drives the report cycle: on every tick it collects one
// batch of readings, stamps a single capture time, and hands the batch to
// the sink.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/ohmrelay/ohmrelay/internal/logging"
	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

// Sink is the destination a poller reports to.
type Sink interface {
	Write(t time.Time, readings []sensors.Reading) error
	Name() string
}

// Poller polls a collector on a fixed interval. Each report runs on its own
// goroutine, so a report slower than the interval overlaps the next one;
// bounding that overlap is the sink's job, and a dropped batch is only
// logged since the next tick supersedes it anyway.
type Poller struct {
	collector sensors.Collector
	sink      Sink
	interval  time.Duration
	log       *logging.Logger

	wg sync.WaitGroup
}

func New(collector sensors.Collector, sink Sink, interval time.Duration, log *logging.Logger) *Poller {
	return &Poller{
		collector: collector,
		sink:      sink,
		interval:  interval,
		log:       log.With("component", "poller"),
	}
}

// Run polls until ctx is cancelled, then waits for in-flight reports to
// finish before returning.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("polling started", "interval", p.interval.String(), "sink", p.sink.Name())

	for {
		select {
		case <-ctx.Done():
			p.wg.Wait()
			p.log.Info("polling stopped")
			return nil
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	readings, err := p.collector.Collect(ctx)
	if err != nil {
		p.log.Error("collect failed", "error", err)
		return
	}
	if len(readings) == 0 {
		p.log.Debug("collector returned no readings")
		return
	}

	// one capture time for the whole batch, taken before any formatting
	captured := time.Now()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if writeErr := p.sink.Write(captured, readings); writeErr != nil {
			p.log.Warn("report dropped", "error", writeErr, "readings", len(readings))
			return
		}
		p.log.Debug("report sent", "readings", len(readings))
	}()
}
