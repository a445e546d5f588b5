package graphite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

func TestMetricPath(t *testing.T) {
	r := sensors.Reading{Identifier: "/a/b/0", Sensor: "GPU Core"}

	assert.Equal(t, "ohm.myhost.a.b.gpucore", MetricPath("myhost", r))
}

func TestMetricPath_NoInteriorSegment(t *testing.T) {
	// The minimal identifier leaves nothing between the dropped leading and
	// trailing segments; the empty interior (and its double dot) is kept.
	r := sensors.Reading{Identifier: "/0", Sensor: "GPU Core"}

	assert.Equal(t, "ohm.myhost..gpucore", MetricPath("myhost", r))
}

func TestMetricPath_BracesAndHash(t *testing.T) {
	r := sensors.Reading{Identifier: "/lpc/{nct6779d}/0/fan/1", Sensor: "Fan #2"}

	assert.Equal(t, "ohm.h.lpc.nct6779d.0.fan.fan.2", MetricPath("h", r))
}

func TestEscapeTagValue(t *testing.T) {
	assert.Equal(t, "cpu-core-1", escapeTagValue("cpu.core 1"))
	assert.Equal(t, "tab-and-newline-", escapeTagValue("tab\tand\nnewline\x00"))

	// idempotent: a clean string passes through unchanged
	assert.Equal(t, "cpu-core-1", escapeTagValue(escapeTagValue("cpu.core 1")))
	assert.Equal(t, "AMD-Ryzen", escapeTagValue("AMD-Ryzen"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "42.5", FormatValue(42.5))
	assert.Equal(t, "100", FormatValue(100))
	assert.Equal(t, "-3.25", FormatValue(-3.25))
	// fixed-point, never exponent notation
	assert.NotContains(t, FormatValue(1e21), "e")
}

func TestFormatLine_Plain(t *testing.T) {
	r := sensors.Reading{Identifier: "/x/0", Sensor: "Y", Value: 42.5}

	assert.Equal(t, "ohm.h.x.y 42.5 1000", FormatLine("h", false, 1000, r))
}

func TestFormatLine_Tagged(t *testing.T) {
	r := sensors.Reading{
		Identifier:   "/amdcpu/0/temperature/0",
		Sensor:       "CPU Package",
		Value:        65.5,
		Hardware:     "AMD Ryzen 7",
		HardwareType: sensors.HardwareCpu,
		SensorType:   sensors.SensorTemperature,
		SensorIndex:  0,
	}

	line := FormatLine("host1", true, 1000, r)
	assert.Equal(t,
		"ohm.host1.amdcpu.0.temperature.cpupackage"+
			";host=host1;app=ohm;hardware=AMD-Ryzen-7;hardware_type=Cpu"+
			";sensor_type=Temperature;sensor_index=0;raw_name=CPU-Package 65.5 1000",
		line)

	// the metric part carries exactly eight semicolon-delimited fields
	metric, _, found := strings.Cut(line, " ")
	assert.True(t, found)
	assert.Len(t, strings.Split(metric, ";"), 8)
}
