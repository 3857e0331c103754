package durations

import (
	"fmt"
	"math"
	"strings"

	"github.com/senseyeio/duration"
)

// ToSeconds converts a declared duration (numeric value plus a unit label) to
// whole seconds. Unit labels are matched by case-insensitive prefix, so
// "seg", "segundos", "Min", "minutos", "h" and "horas" all resolve. An
// unrecognized unit treats the value as seconds.
func ToSeconds(value float64, unit string) int {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.HasPrefix(u, "seg") || strings.HasPrefix(u, "sec"):
	case strings.HasPrefix(u, "min"):
		value *= 60
	case strings.HasPrefix(u, "h"):
		value *= 3600
	}

	return int(math.Round(value))
}

// Format renders seconds as a zero-padded hh:mm:ss label. Negative and
// non-finite inputs clamp to zero.
func Format(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}

	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// ParseISO8601 converts an ISO-8601 duration string such as "PT1H30M" to
// seconds. Calendar components use the usual 365-day year and 30-day month
// approximations.
func ParseISO8601(s string) (int, error) {
	d, err := duration.ParseISO8601(s)
	if err != nil {
		return 0, err
	}

	seconds := d.Y*365*24*3600 +
		d.M*30*24*3600 +
		d.W*7*24*3600 +
		d.D*24*3600 +
		d.TH*3600 +
		d.TM*60 +
		d.TS
	return seconds, nil
}
