package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTickTime(t *testing.T) {
	tests := []struct {
		name     string
		seconds  int64
		expected string
	}{
		{name: "epoch", seconds: 0, expected: "1970-01-01 00:00"},
		{name: "seconds truncated", seconds: 1700000059, expected: "2023-11-14 22:14"},
		{name: "before epoch", seconds: -60, expected: "1969-12-31 23:59"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTickTime(tt.seconds))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{name: "epoch seconds", input: "1700000000", expected: 1700000000},
		{name: "negative", input: "-5", expected: -5},
		{name: "float whole", input: "1700000000.0", expected: 1700000000},
		{name: "padded", input: "  42 ", expected: 42},
		{name: "rfc3339", input: "2023-11-14T22:13:20Z", expected: 1700000000},
		{name: "rfc3339 offset", input: "2023-11-15T00:13:20+02:00", expected: 1700000000},
		{name: "fractional", input: "1.5", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{name: "plain seconds", input: "3600", expected: 3600},
		{name: "seconds unit", input: "90s", expected: 90},
		{name: "minutes", input: "10min", expected: 600},
		{name: "hours", input: "12h", expected: 12 * 3600},
		{name: "days", input: "7d", expected: 7 * 86400},
		{name: "weeks and days", input: "2w3d", expected: 17 * 86400},
		{name: "day and hours", input: "1d12h", expected: 36 * 3600},
		{name: "month", input: "1m", expected: 30 * 86400},
		{name: "year", input: "1y", expected: 365 * 86400},
		{name: "unknown unit", input: "5x", wantErr: true},
		{name: "trailing junk", input: "5hfoo", wantErr: true},
		{name: "leading junk", input: "foo5h", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNowIsUTC(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = time.Now }()

	assert.Equal(t, time.UTC, Now().Location())
	assert.Equal(t, fixed.Unix(), Now().Unix())
}
