package chart

import (
	"fmt"
	"math"

	"github.com/penwyp/go-timeplot/internal/core/model"
)

// Series property keys
const (
	PropType      = "type"
	PropColor     = "color"
	PropName      = "name"
	PropUnit      = "unit"
	PropRangeMode = "range_mode"
	PropMin       = "min"
	PropMax       = "max"
)

// SeriesConfig describes how one value column is drawn. It is a value object;
// the model replaces it wholesale on every update.
type SeriesConfig struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Color     string  `json:"color"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	RangeMode string  `json:"range_mode"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// DefaultSeriesConfig returns the template that seeds newly added series.
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{
		ID:        model.DefaultSeriesID,
		Type:      model.DisplayLine,
		Color:     "#000000",
		Name:      "?",
		Unit:      "1",
		RangeMode: model.RangeAuto,
	}
}

// Get returns one property.
func (s SeriesConfig) Get(key string) (any, error) {
	switch key {
	case PropType:
		return s.Type, nil
	case PropColor:
		return s.Color, nil
	case PropName:
		return s.Name, nil
	case PropUnit:
		return s.Unit, nil
	case PropRangeMode:
		return s.RangeMode, nil
	case PropMin:
		return s.Min, nil
	case PropMax:
		return s.Max, nil
	}
	return nil, fmt.Errorf("%w: series property %q", model.ErrUnknownProperty, key)
}

// With returns a copy of s with one property replaced.
func (s SeriesConfig) With(key string, value any) (SeriesConfig, error) {
	switch key {
	case PropType:
		str, err := toEnum(value, model.DisplayLine, model.DisplayBar)
		if err != nil {
			return s, fmt.Errorf("series property %q: %w", key, err)
		}
		s.Type = str
	case PropRangeMode:
		str, err := toEnum(value, model.RangeAuto, model.RangeFixed)
		if err != nil {
			return s, fmt.Errorf("series property %q: %w", key, err)
		}
		s.RangeMode = str
	case PropColor, PropName, PropUnit:
		str, ok := value.(string)
		if !ok {
			return s, fmt.Errorf("series property %q: %w: %T is not a string", key, model.ErrInvalidOption, value)
		}
		switch key {
		case PropColor:
			s.Color = str
		case PropName:
			s.Name = str
		default:
			s.Unit = str
		}
	case PropMin, PropMax:
		f, err := toFloat(value)
		if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			err = fmt.Errorf("%w: %v is not finite", model.ErrInvalidOption, f)
		}
		if err != nil {
			return s, fmt.Errorf("series property %q: %w", key, err)
		}
		if key == PropMin {
			s.Min = f
		} else {
			s.Max = f
		}
	default:
		return s, fmt.Errorf("%w: series property %q", model.ErrUnknownProperty, key)
	}
	return s, nil
}

// Range returns the value range the series is drawn with. Auto ranges come
// from the column's samples; a flat column is padded by one unit each way.
func (s SeriesConfig) Range(columnMin, columnMax float64) (min, max float64, err error) {
	if s.RangeMode == model.RangeFixed {
		if !(s.Max > s.Min) {
			return 0, 0, fmt.Errorf("series %q: %w: fixed range [%v, %v]", s.ID, model.ErrDegenerateRange, s.Min, s.Max)
		}
		return s.Min, s.Max, nil
	}
	if columnMin == columnMax {
		return columnMin - 1, columnMax + 1, nil
	}
	return columnMin, columnMax, nil
}

func toEnum(value any, allowed ...string) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %T is not a string", model.ErrInvalidOption, value)
	}
	for _, a := range allowed {
		if str == a {
			return str, nil
		}
	}
	return "", fmt.Errorf("%w: %q not one of %v", model.ErrInvalidOption, str, allowed)
}

func checkSeriesID(id string) error {
	switch id {
	case "", model.DefaultSeriesID, model.TimeColumn:
		return fmt.Errorf("%w: %q", model.ErrInvalidSeriesID, id)
	}
	return nil
}
