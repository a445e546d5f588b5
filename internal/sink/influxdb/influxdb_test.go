package influxdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

func TestNewPoint(t *testing.T) {
	captured := time.Unix(1000, 0)
	p := newPoint("h", captured, sensors.Reading{
		Identifier:   "/gpu/0/temperature/0",
		Sensor:       "GPU Core",
		Value:        42.5,
		Hardware:     "RTX 3080",
		HardwareType: sensors.HardwareGpuNvidia,
		SensorType:   sensors.SensorTemperature,
	})

	assert.Equal(t, "ohm_temperature", p.Name())
	assert.Equal(t, captured, p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{
		"app":           "ohm",
		"host":          "h",
		"hardware":      "RTX 3080",
		"hardware_type": "GpuNvidia",
		"sensor":        "GPU Core",
		"sensor_index":  "0",
	}, tags)

	fields := p.FieldList()
	require.Len(t, fields, 1)
	assert.Equal(t, "value", fields[0].Key)
	assert.Equal(t, 42.5, fields[0].Value)
}
