package model

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bytedance/sonic"
)

// Value is one cell of a table: a number or null ("no sample").
type Value struct {
	Num   float64
	Valid bool
}

// Null is the empty sample.
var Null = Value{}

// Num wraps a sample value.
func Num(v float64) Value {
	return Value{Num: v, Valid: true}
}

// NonFinite reports whether v carries NaN or an infinity. Neither can be
// placed on a value axis.
func (v Value) NonFinite() bool {
	return v.Valid && (math.IsNaN(v.Num) || math.IsInf(v.Num, 0))
}

func (v Value) String() string {
	if !v.Valid {
		return "null"
	}
	return strconv.FormatFloat(v.Num, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return nil, fmt.Errorf("value %v cannot be encoded", v.Num)
	}
	return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Null
		return nil
	}

	// Numbers are the common case; quoted numbers come from loosely typed producers.
	var f float64
	if err := sonic.Unmarshal(data, &f); err == nil {
		*v = Num(f)
		return nil
	}

	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		if str == "" {
			*v = Null
			return nil
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("value must be a number or null, got %q", str)
		}
		*v = Num(f)
		return nil
	}

	return fmt.Errorf("value must be a number or null")
}

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	Operation string
}

// InteractionState represents the current UI interaction state
type InteractionState struct {
	IsPaused       bool
	ShowHelp       bool
	ForceRefresh   bool
	IsLoading      bool
	LoadingMessage string
	StatusMessage  string // Status message to display
}
