package model

import "errors"

var (
	// ErrOutOfRange reports a bad row index or column name.
	ErrOutOfRange = errors.New("out of range")
	// ErrEmptyColumn reports a min/max scan over a column without samples.
	ErrEmptyColumn = errors.New("empty column")
	// ErrDegenerateRange reports a value range with max == min.
	ErrDegenerateRange = errors.New("degenerate range")
	// ErrDegenerateStep reports an axis step that would be zero.
	ErrDegenerateStep = errors.New("degenerate step")
	// ErrInvalidSeriesID reports the reserved template id or an unknown series.
	ErrInvalidSeriesID = errors.New("invalid series id")
	// ErrInvalidTable reports rows or columns that break the table contract.
	ErrInvalidTable = errors.New("invalid table")
	// ErrUnknownProperty reports a configuration key outside the closed set.
	ErrUnknownProperty = errors.New("unknown property")
)

// ErrInvalidOption reports a configuration value outside its allowed domain.
var ErrInvalidOption = errors.New("invalid option")
