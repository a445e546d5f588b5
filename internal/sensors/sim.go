package sensors

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Simulator is a Collector that produces a fixed set of plausible readings
// with small random drift between polls. It stands in for real hardware on
// development machines and platforms without hwmon.
type Simulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	channels []simChannel
}

type simChannel struct {
	reading Reading
	jitter  float64
	min     float64
	max     float64
}

// NewSimulator creates a simulator seeded for reproducible sequences.
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{
		rng: rand.New(rand.NewPCG(seed, seed)),
		channels: []simChannel{
			sim("/simcpu/0/temperature/0", "CPU Package", "Sim CPU", HardwareCpu, SensorTemperature, 0, 54, 2.0, 30, 95),
			sim("/simcpu/0/load/0", "CPU Total", "Sim CPU", HardwareCpu, SensorLoad, 0, 22, 8.0, 0, 100),
			sim("/simcpu/0/clock/1", "CPU Core #1", "Sim CPU", HardwareCpu, SensorClock, 1, 3800, 150, 800, 4900),
			sim("/simcpu/0/power/0", "Package", "Sim CPU", HardwareCpu, SensorPower, 0, 45, 5.0, 5, 140),
			sim("/gpu-sim/0/temperature/0", "GPU Core", "Sim GPU", HardwareGpuNvidia, SensorTemperature, 0, 48, 1.5, 30, 90),
			sim("/gpu-sim/0/fan/0", "GPU Fan", "Sim GPU", HardwareGpuNvidia, SensorFan, 0, 1400, 60, 0, 3200),
			sim("/ram/data/0", "Used Memory", "Sim Memory", HardwareMemory, SensorData, 0, 11.4, 0.4, 1, 31.8),
			sim("/nvme/0/temperature/0", "Drive", "Sim NVMe", HardwareStorage, SensorTemperature, 0, 38, 0.6, 25, 75),
		},
	}
}

func sim(id, sensor, hardware string, ht HardwareType, st SensorType, index int,
	start, jitter, min, max float64) simChannel {
	return simChannel{
		reading: Reading{
			Identifier:   id,
			Sensor:       sensor,
			Value:        start,
			Hardware:     hardware,
			HardwareType: ht,
			SensorType:   st,
			SensorIndex:  index,
		},
		jitter: jitter,
		min:    min,
		max:    max,
	}
}

func (s *Simulator) Collect(ctx context.Context) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	readings := make([]Reading, len(s.channels))
	for i := range s.channels {
		ch := &s.channels[i]
		v := ch.reading.Value + (s.rng.Float64()*2-1)*ch.jitter
		if v < ch.min {
			v = ch.min
		}
		if v > ch.max {
			v = ch.max
		}
		ch.reading.Value = v
		readings[i] = ch.reading
	}
	return readings, nil
}

func (s *Simulator) Close() error { return nil }
