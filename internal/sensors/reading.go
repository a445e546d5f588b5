package sensors

import "context"

// Reading is one sampled value from a hardware sensor, together with the
// metadata needed to name and tag the resulting metric.
//
// Identifier is the slash-delimited hierarchical path the monitoring source
// assigns to the sensor, e.g. "/amdcpu/0/temperature/0". It always starts
// with a separator and ends with a trailing segment (usually an index) that
// the formatters strip.
type Reading struct {
	Identifier   string
	Sensor       string // display name, e.g. "CPU Package"
	Value        float64
	Hardware     string // hardware display name, e.g. "AMD Ryzen 7 5800X"
	HardwareType HardwareType
	SensorType   SensorType
	SensorIndex  int
}

// Collector produces one batch of readings per call. Implementations are
// polled by the scheduler; they do not push.
type Collector interface {
	// Collect returns the current readings, in a stable order.
	Collect(ctx context.Context) ([]Reading, error)
	Close() error
}

// HardwareType categorizes the hardware a sensor belongs to.
type HardwareType int

const (
	HardwareUnknown HardwareType = iota
	HardwareMotherboard
	HardwareCpu
	HardwareMemory
	HardwareGpuNvidia
	HardwareGpuAmd
	HardwareStorage
	HardwareNetwork
	HardwareCooler
	HardwarePsu
	HardwareBattery
	HardwareController
)

var hardwareTypeNames = map[HardwareType]string{
	HardwareUnknown:     "Unknown",
	HardwareMotherboard: "Motherboard",
	HardwareCpu:         "Cpu",
	HardwareMemory:      "Memory",
	HardwareGpuNvidia:   "GpuNvidia",
	HardwareGpuAmd:      "GpuAmd",
	HardwareStorage:     "Storage",
	HardwareNetwork:     "Network",
	HardwareCooler:      "Cooler",
	HardwarePsu:         "Psu",
	HardwareBattery:     "Battery",
	HardwareController:  "Controller",
}

func (h HardwareType) String() string {
	if name, ok := hardwareTypeNames[h]; ok {
		return name
	}
	return hardwareTypeNames[HardwareUnknown]
}

// SensorType categorizes the quantity a sensor measures.
type SensorType int

const (
	SensorUnknown SensorType = iota
	SensorVoltage
	SensorCurrent
	SensorPower
	SensorClock
	SensorTemperature
	SensorLoad
	SensorFan
	SensorFlow
	SensorControl
	SensorLevel
	SensorFactor
	SensorData
	SensorThroughput
	SensorEnergy
)

var sensorTypeNames = map[SensorType]string{
	SensorUnknown:     "Unknown",
	SensorVoltage:     "Voltage",
	SensorCurrent:     "Current",
	SensorPower:       "Power",
	SensorClock:       "Clock",
	SensorTemperature: "Temperature",
	SensorLoad:        "Load",
	SensorFan:         "Fan",
	SensorFlow:        "Flow",
	SensorControl:     "Control",
	SensorLevel:       "Level",
	SensorFactor:      "Factor",
	SensorData:        "Data",
	SensorThroughput:  "Throughput",
	SensorEnergy:      "Energy",
}

func (s SensorType) String() string {
	if name, ok := sensorTypeNames[s]; ok {
		return name
	}
	return sensorTypeNames[SensorUnknown]
}
