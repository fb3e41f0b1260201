package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFmtLatency(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0ms"},
		{0.05, "50ms"},
		{0.85, "850ms"},
		{0.999, "999ms"},
		{1, "1.0s"},
		{1.2, "1.2s"},
		{12.34, "12.3s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FmtLatency(tt.input), "FmtLatency(%v)", tt.input)
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{100 * time.Millisecond, "0.1s"},
		{2 * time.Second, "2.0s"},
		{65 * time.Second, "1m 5s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FmtDuration(tt.input), "FmtDuration(%v)", tt.input)
	}
}

func TestFmtTimestampIn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "utc", input: "2024-01-01T00:00:00Z", expected: "1/1/2024, 12:00:00 AM"},
		{name: "offset", input: "2024-01-01T15:30:00+02:00", expected: "1/1/2024, 1:30:00 PM"},
		{name: "naive with micros", input: "2024-03-05T09:07:08.123456", expected: "3/5/2024, 9:07:08 AM"},
		{name: "space separated", input: "2024-03-05 21:07:08", expected: "3/5/2024, 9:07:08 PM"},
		{name: "unparseable", input: "yesterday", expected: "yesterday"},
		{name: "empty", input: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FmtTimestampIn(tt.input, time.UTC))
		})
	}
}

func TestTemperatureDescription(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "Focused & Deterministic"},
		{0.3, "Focused & Deterministic"},
		{0.4, "Balanced Creativity"},
		{0.7, "Balanced Creativity"},
		{0.8, "Highly Creative & Varied"},
		{1, "Highly Creative & Varied"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, TemperatureDescription(tt.input), "TemperatureDescription(%v)", tt.input)
	}
}

func TestFmtTemperature(t *testing.T) {
	assert.Equal(t, "0.7", FmtTemperature(0.7))
	assert.Equal(t, "0.0", FmtTemperature(0))
	assert.Equal(t, "1.0", FmtTemperature(1))
	assert.Equal(t, "0.25", FmtTemperature(0.25))
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 1000, Remaining("", 1000))
	assert.Equal(t, 995, Remaining("hello", 1000))
	assert.Equal(t, 998, Remaining("日本", 1000))
	assert.Equal(t, -1, Remaining("ab", 1))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello world", 3))
	assert.Equal(t, "hello world", Truncate("hello\nworld", 20))
	assert.Empty(t, Truncate("", 5))
}
