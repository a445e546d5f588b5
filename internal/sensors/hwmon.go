package sensors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultHwmonRoot is where the Linux kernel exposes hardware monitoring chips.
const DefaultHwmonRoot = "/sys/class/hwmon"

var hwmonInputPattern = regexp.MustCompile(`^(temp|fan|in|power)(\d+)_input$`)

// Hwmon reads sensor values from the Linux hwmon sysfs tree. Each chip
// directory contributes one hardware, each *_input file one Reading.
type Hwmon struct {
	root string
}

func NewHwmon(root string) *Hwmon {
	if root == "" {
		root = DefaultHwmonRoot
	}
	return &Hwmon{root: root}
}

func (h *Hwmon) Collect(ctx context.Context) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chips, err := os.ReadDir(h.root)
	if err != nil {
		return nil, fmt.Errorf("hwmon: reading %s: %w", h.root, err)
	}

	var readings []Reading
	for _, chip := range chips {
		dir := filepath.Join(h.root, chip.Name())
		name := readTrimmed(filepath.Join(dir, "name"))
		if name == "" {
			name = chip.Name()
		}

		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, f := range files {
			m := hwmonInputPattern.FindStringSubmatch(f.Name())
			if m == nil {
				continue
			}
			raw := readTrimmed(filepath.Join(dir, f.Name()))
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			kind, index := m[1], m[2]
			idx, _ := strconv.Atoi(index)

			sensor := readTrimmed(filepath.Join(dir, kind+index+"_label"))
			if sensor == "" {
				sensor = kind + index
			}

			readings = append(readings, Reading{
				Identifier:   fmt.Sprintf("/%s/%d/%s/%d", name, chipIndex(chip.Name()), sensorPath(kind), idx),
				Sensor:       sensor,
				Value:        scaleHwmon(kind, value),
				Hardware:     name,
				HardwareType: hardwareTypeFor(name),
				SensorType:   sensorTypeFor(kind),
				SensorIndex:  idx,
			})
		}
	}
	return readings, nil
}

func (h *Hwmon) Close() error { return nil }

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// chipIndex extracts N from "hwmonN".
func chipIndex(dir string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(dir, "hwmon"))
	return n
}

// scaleHwmon converts raw sysfs integers to conventional units: millidegrees
// to degrees, millivolts to volts, microwatts to watts. Fan speeds are
// already RPM.
func scaleHwmon(kind string, raw float64) float64 {
	switch kind {
	case "temp", "in":
		return raw / 1000
	case "power":
		return raw / 1e6
	default:
		return raw
	}
}

func sensorPath(kind string) string {
	switch kind {
	case "temp":
		return "temperature"
	case "fan":
		return "fan"
	case "in":
		return "voltage"
	case "power":
		return "power"
	default:
		return kind
	}
}

func sensorTypeFor(kind string) SensorType {
	switch kind {
	case "temp":
		return SensorTemperature
	case "fan":
		return SensorFan
	case "in":
		return SensorVoltage
	case "power":
		return SensorPower
	default:
		return SensorUnknown
	}
}

func hardwareTypeFor(chip string) HardwareType {
	c := strings.ToLower(chip)
	switch {
	case strings.Contains(c, "coretemp"), strings.Contains(c, "k10temp"),
		strings.Contains(c, "zenpower"), strings.Contains(c, "cpu"):
		return HardwareCpu
	case strings.Contains(c, "amdgpu"), strings.Contains(c, "radeon"):
		return HardwareGpuAmd
	case strings.Contains(c, "nvidia"), strings.Contains(c, "nouveau"):
		return HardwareGpuNvidia
	case strings.Contains(c, "nvme"), strings.Contains(c, "drivetemp"):
		return HardwareStorage
	case strings.Contains(c, "bat"):
		return HardwareBattery
	case strings.Contains(c, "acpi"), strings.Contains(c, "nct"), strings.Contains(c, "it86"):
		return HardwareMotherboard
	default:
		return HardwareUnknown
	}
}
