package model

// Column identifiers
const (
	// TimeColumn is the required time key of every table. Values are epoch seconds.
	TimeColumn = "Time"
)

// Series identifiers
const (
	// DefaultSeriesID names the template that seeds newly added series. It can
	// never be used as a real series id.
	DefaultSeriesID = "###default###"
)

// Display types
const (
	DisplayLine = "line"
	DisplayBar  = "bar"
)

// Range modes
const (
	RangeFixed = "fixed"
	RangeAuto  = "auto"
)

// Retention intervals
const (
	Interval10Min  = "10min"
	Interval1Hour  = "1hour"
	Interval24Hour = "24hour"
	Interval7Days  = "7days"
	Interval1Month = "1month"
	Interval1Year  = "1year"
)

// DefaultIntervals returns the retention interval names in ascending resolution order.
func DefaultIntervals() []string {
	return []string{Interval10Min, Interval1Hour, Interval24Hour, Interval7Days, Interval1Month, Interval1Year}
}
