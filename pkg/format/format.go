// Package format renders generation values for display.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Temperature band boundaries, inclusive upper bounds.
const (
	focusedMax  = 0.3
	balancedMax = 0.7
)

// LowRemainingThreshold is the remaining-character count below which the
// prompt counter is shown as a warning.
const LowRemainingThreshold = 100

// timestampLayouts are tried in order. The backend emits ISO 8601, with or
// without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// DisplayTimestampLayout is how parsed timestamps are shown.
const DisplayTimestampLayout = "1/2/2006, 3:04:05 PM"

// FmtLatency formats a generation time in seconds: under one second as whole
// milliseconds ("850ms"), otherwise with one decimal ("1.2s").
func FmtLatency(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%.0fms", seconds*1000)
	}

	return fmt.Sprintf("%.1fs", seconds)
}

// FmtDuration formats an elapsed duration for display.
func FmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	m := int(d.Minutes())
	s := int(d.Seconds()) % 60

	return fmt.Sprintf("%dm %ds", m, s)
}

// FmtTimestamp renders a server timestamp in local time, or returns it
// unchanged when it cannot be parsed.
func FmtTimestamp(ts string) string {
	return FmtTimestampIn(ts, time.Local)
}

// FmtTimestampIn is FmtTimestamp for an explicit location. Timestamps
// without an offset are read as being in loc.
func FmtTimestampIn(ts string, loc *time.Location) string {
	raw := strings.TrimSpace(ts)
	if raw == "" {
		return ts
	}

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return t.In(loc).Format(DisplayTimestampLayout)
		}
	}

	return ts
}

// FmtTemperature renders a temperature with as many decimals as it needs,
// and at least one.
func FmtTemperature(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// TemperatureDescription names the creativity band a temperature falls in.
func TemperatureDescription(v float64) string {
	switch {
	case v <= focusedMax:
		return "Focused & Deterministic"
	case v <= balancedMax:
		return "Balanced Creativity"
	default:
		return "Highly Creative & Varied"
	}
}

// Remaining returns how many characters can still be added to s before it
// reaches limit. It is negative when s is already over.
func Remaining(s string, limit int) int {
	return limit - utf8.RuneCountInString(s)
}

// Truncate returns s shortened to at most n runes, with "..." appended if
// truncated. Newlines are replaced with spaces for single-line display.
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")

	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "..."
}
