package graphite

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ohmrelay/ohmrelay/internal/sensors"
)

var braceStripper = strings.NewReplacer("{", "", "}", "")

// MetricPath builds the dotted series name for a reading:
// ohm.<host>.<normalized identifier>.<normalized sensor name>.
//
// The identifier's separators become dots, the leading empty segment and
// the trailing index segment are dropped, and any brace characters are
// stripped. The sensor name is lower-cased with spaces removed and '#'
// turned into a dot. An identifier with nothing between its first and last
// segment yields an empty interior and therefore a double dot in the path;
// that degenerate form is kept as-is.
func MetricPath(host string, r sensors.Reading) string {
	path := strings.ReplaceAll(r.Identifier, "/", ".")
	path = strings.TrimPrefix(path, ".")
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[:i]
	} else {
		path = ""
	}
	path = braceStripper.Replace(path)

	name := strings.ToLower(r.Sensor)
	name = strings.ReplaceAll(name, " ", "")
	name = strings.ReplaceAll(name, "#", ".")

	return "ohm." + host + "." + path + "." + name
}

// FormatLine renders one reading as a single protocol line, without the
// trailing newline. All lines of a batch share the same epoch.
func FormatLine(host string, tagged bool, epoch int64, r sensors.Reading) string {
	path := MetricPath(host, r)
	value := FormatValue(r.Value)
	if !tagged {
		return fmt.Sprintf("%s %s %d", path, value, epoch)
	}
	return fmt.Sprintf("%s;host=%s;app=ohm;hardware=%s;hardware_type=%s;sensor_type=%s;sensor_index=%d;raw_name=%s %s %d",
		path,
		host,
		escapeTagValue(r.Hardware),
		r.HardwareType,
		r.SensorType,
		r.SensorIndex,
		escapeTagValue(r.Sensor),
		value,
		epoch,
	)
}

// FormatValue renders a value in fixed-point form with '.' as the decimal
// separator and no grouping, regardless of process locale. Carbon does not
// accept exponent notation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeTagValue replaces characters that carbon's tag parser would choke
// on (dots, whitespace, control characters) with '-'. Applied to raw
// hardware and sensor names only, never to an already normalized path.
func escapeTagValue(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return '-'
		}
		return r
	}, s)
}
