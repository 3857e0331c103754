package durations

import (
	"math"
	"testing"
)

func TestToSeconds(t *testing.T) {
	cases := []struct {
		value    float64
		unit     string
		expected int
	}{
		{30, "seg", 30},
		{30, "segundos", 30},
		{45, "Seconds", 45},
		{2, "min", 120},
		{1.5, "minutos", 90},
		{1, "h", 3600},
		{2, "Horas", 7200},
		{90, "", 90},
		{90, "frames", 90},
		{0, "min", 0},
		{-5, "seg", 0},
	}

	for _, c := range cases {
		if got := ToSeconds(c.value, c.unit); got != c.expected {
			t.Errorf("ToSeconds(%v, %q) = %d, expected %d", c.value, c.unit, got, c.expected)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{60, "00:01:00"},
		{3599, "00:59:59"},
		{3661, "01:01:01"},
		{-10, "00:00:00"},
		{math.NaN(), "00:00:00"},
		{math.Inf(1), "00:00:00"},
		{36000, "10:00:00"},
	}

	for _, c := range cases {
		if got := Format(c.seconds); got != c.expected {
			t.Errorf("Format(%v) = %s, expected %s", c.seconds, got, c.expected)
		}
	}
}

func TestParseISO8601(t *testing.T) {
	cases := []struct {
		input    string
		expected int
	}{
		{"PT30S", 30},
		{"PT2M", 120},
		{"PT1H30M", 5400},
		{"PT1H2M3S", 3723},
		{"P1D", 86400},
	}

	for _, c := range cases {
		got, err := ParseISO8601(c.input)
		if err != nil {
			t.Fatalf("ParseISO8601(%q) failed: %v", c.input, err)
		}
		if got != c.expected {
			t.Errorf("ParseISO8601(%q) = %d, expected %d", c.input, got, c.expected)
		}
	}

	if _, err := ParseISO8601("garbage"); err == nil {
		t.Error("ParseISO8601 should reject malformed input")
	}
}
