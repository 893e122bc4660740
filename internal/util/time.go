package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TickTimeLayout is the label layout of time-axis ticks. Seconds are dropped.
const TickTimeLayout = "2006-01-02 15:04"

// Labels are always rendered in UTC; calendar rendering is not zone aware.
var labelLocation = time.UTC

// nowFunc is swapped in tests.
var nowFunc = time.Now

// Now returns the current wall clock time in UTC.
func Now() time.Time {
	return nowFunc().UTC()
}

// FormatTickTime formats epoch seconds as a tick label.
func FormatTickTime(seconds int64) string {
	return time.Unix(seconds, 0).In(labelLocation).Format(TickTimeLayout)
}

// ParseTimestamp parses epoch seconds ("1700000000") or an RFC3339 time.
func ParseTimestamp(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("timestamp %q is not whole seconds", s)
		}
		return int64(f), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: want epoch seconds or RFC3339", s)
	}
	return ts.Unix(), nil
}

var spanPattern = regexp.MustCompile(`(\d+)(min|[shdwmy])`)

// ParseSpan parses a span such as "90s", "10min", "12h", "7d", "2w3d", "1m" or
// "1y" into seconds. Months are 30 days and years 365 days.
func ParseSpan(spanStr string) (int64, error) {
	spanStr = strings.TrimSpace(spanStr)
	if spanStr == "" {
		return 0, fmt.Errorf("empty span")
	}
	if n, err := strconv.ParseInt(spanStr, 10, 64); err == nil {
		return n, nil
	}

	matches := spanPattern.FindAllStringSubmatchIndex(spanStr, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid span format: %s", spanStr)
	}

	var total int64
	consumed := 0
	for _, m := range matches {
		if m[0] != consumed {
			return 0, fmt.Errorf("invalid span format: %s", spanStr)
		}
		consumed = m[1]

		value, err := strconv.ParseInt(spanStr[m[2]:m[3]], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in span: %s", spanStr[m[2]:m[3]])
		}

		switch unit := spanStr[m[4]:m[5]]; unit {
		case "s":
			total += value
		case "min":
			total += value * 60
		case "h":
			total += value * 3600
		case "d":
			total += value * 24 * 3600
		case "w":
			total += value * 7 * 24 * 3600
		case "m":
			total += value * 30 * 24 * 3600
		case "y":
			total += value * 365 * 24 * 3600
		default:
			return 0, fmt.Errorf("unsupported time unit: %s", unit)
		}
	}
	if consumed != len(spanStr) {
		return 0, fmt.Errorf("invalid span format: %s", spanStr)
	}
	return total, nil
}
