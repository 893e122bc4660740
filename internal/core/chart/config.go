package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/viewport"
	"github.com/penwyp/go-timeplot/internal/util"
)

// Option keys
const (
	OptWidth                  = "width"
	OptHeight                 = "height"
	OptTimeOffset             = "time_offset"
	OptTimeLength             = "time_length"
	OptSecondsPerPixel        = "seconds_per_pixel"
	OptSecondsPerGridLine     = "seconds_per_grid_line"
	OptNumHorizontalGridLines = "num_horizontal_grid_lines"
	OptAllowOverscroll        = "allow_overscroll"
	OptAxisFontSizePx         = "axis_font_size_px"
	OptCachingEnabled         = "caching_enabled"
	OptIntervals              = "intervals"
	OptWheelMultiplier        = "wheel_multiplier"
	OptDragEdgeMarginPx       = "drag_edge_margin_px"
	OptKeyStepPx              = "key_step_px"
)

// Defaults
const (
	DefaultWidth                  = 500
	DefaultHeight                 = 1000
	DefaultTimeLength             = int64(24 * time.Hour / time.Second)
	DefaultSecondsPerPixel        = 60.0
	DefaultSecondsPerGridLine     = int64(time.Hour / time.Second)
	DefaultNumHorizontalGridLines = 10
	DefaultAxisFontSizePx         = 16.0
)

// Config contains the chart configuration. Every field maps to exactly one
// option key; the set of keys is closed.
type Config struct {
	// Container size in pixels
	Width  int
	Height int

	// Time domain
	TimeOffset      int64 // epoch seconds of the left edge of the domain
	TimeLength      int64
	SecondsPerPixel float64

	// Grid and axes
	SecondsPerGridLine     int64
	NumHorizontalGridLines int
	AxisFontSizePx         float64

	// Scrolling
	AllowOverscroll  bool
	WheelMultiplier  float64
	DragEdgeMarginPx float64
	KeyStepPx        float64

	// Persistence
	CachingEnabled bool
	Intervals      []string
}

// DefaultConfig returns the configuration of a fresh chart: the last day at
// one pixel per minute with hourly grid lines.
func DefaultConfig() Config {
	return Config{
		Width:                  DefaultWidth,
		Height:                 DefaultHeight,
		TimeOffset:             util.Now().Unix() - DefaultTimeLength,
		TimeLength:             DefaultTimeLength,
		SecondsPerPixel:        DefaultSecondsPerPixel,
		SecondsPerGridLine:     DefaultSecondsPerGridLine,
		NumHorizontalGridLines: DefaultNumHorizontalGridLines,
		AxisFontSizePx:         DefaultAxisFontSizePx,
		WheelMultiplier:        viewport.DefaultWheelMultiplier,
		DragEdgeMarginPx:       viewport.DefaultDragEdgeMarginPx,
		KeyStepPx:              viewport.DefaultKeyStepPx,
		Intervals:              model.DefaultIntervals(),
	}
}

// Validate fills unset fields with defaults and rejects values that can not
// be drawn.
func (c *Config) Validate() error {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.TimeLength == 0 {
		c.TimeLength = DefaultTimeLength
	}
	if c.SecondsPerPixel == 0 {
		c.SecondsPerPixel = DefaultSecondsPerPixel
	}
	if c.SecondsPerGridLine == 0 {
		c.SecondsPerGridLine = DefaultSecondsPerGridLine
	}
	if c.AxisFontSizePx == 0 {
		c.AxisFontSizePx = DefaultAxisFontSizePx
	}
	if c.WheelMultiplier == 0 {
		c.WheelMultiplier = viewport.DefaultWheelMultiplier
	}
	if c.DragEdgeMarginPx == 0 {
		c.DragEdgeMarginPx = viewport.DefaultDragEdgeMarginPx
	}
	if c.KeyStepPx == 0 {
		c.KeyStepPx = viewport.DefaultKeyStepPx
	}
	if len(c.Intervals) == 0 {
		c.Intervals = model.DefaultIntervals()
	}

	switch {
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("%w: size %dx%d", model.ErrInvalidOption, c.Width, c.Height)
	case c.TimeLength < 0:
		return fmt.Errorf("%w: time_length %d", model.ErrInvalidOption, c.TimeLength)
	case !(c.SecondsPerPixel > 0) || math.IsInf(c.SecondsPerPixel, 0):
		return fmt.Errorf("%w: seconds_per_pixel %v", model.ErrInvalidOption, c.SecondsPerPixel)
	case c.SecondsPerGridLine < 0:
		return fmt.Errorf("%w: seconds_per_grid_line %d", model.ErrInvalidOption, c.SecondsPerGridLine)
	case c.NumHorizontalGridLines < 0:
		return fmt.Errorf("%w: num_horizontal_grid_lines %d", model.ErrInvalidOption, c.NumHorizontalGridLines)
	case !(c.AxisFontSizePx > 0):
		return fmt.Errorf("%w: axis_font_size_px %v", model.ErrInvalidOption, c.AxisFontSizePx)
	}
	return nil
}

// Viewport returns the viewport described by c with the given scroll offset.
func (c Config) Viewport(xOffset float64) model.Viewport {
	return model.Viewport{
		TimeOffset:      c.TimeOffset,
		TimeLength:      c.TimeLength,
		SecondsPerPixel: c.SecondsPerPixel,
		XOffset:         xOffset,
		AllowOverscroll: c.AllowOverscroll,
		WidthPx:         c.Width,
	}
}

// InputSettings returns the pan input settings described by c.
func (c Config) InputSettings() viewport.Settings {
	return viewport.Settings{
		WheelMultiplier:  c.WheelMultiplier,
		DragEdgeMarginPx: c.DragEdgeMarginPx,
		KeyStepPx:        c.KeyStepPx,
	}
}

// clone returns a copy that shares no slices with c.
func (c Config) clone() Config {
	c.Intervals = append([]string(nil), c.Intervals...)
	return c
}

// OptionKeys returns the recognized option keys in alphabetical order.
func OptionKeys() []string {
	keys := []string{
		OptWidth, OptHeight, OptTimeOffset, OptTimeLength, OptSecondsPerPixel,
		OptSecondsPerGridLine, OptNumHorizontalGridLines, OptAllowOverscroll,
		OptAxisFontSizePx, OptCachingEnabled, OptIntervals, OptWheelMultiplier,
		OptDragEdgeMarginPx, OptKeyStepPx,
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of one option.
func (c Config) Get(key string) (any, error) {
	switch key {
	case OptWidth:
		return c.Width, nil
	case OptHeight:
		return c.Height, nil
	case OptTimeOffset:
		return c.TimeOffset, nil
	case OptTimeLength:
		return c.TimeLength, nil
	case OptSecondsPerPixel:
		return c.SecondsPerPixel, nil
	case OptSecondsPerGridLine:
		return c.SecondsPerGridLine, nil
	case OptNumHorizontalGridLines:
		return c.NumHorizontalGridLines, nil
	case OptAllowOverscroll:
		return c.AllowOverscroll, nil
	case OptAxisFontSizePx:
		return c.AxisFontSizePx, nil
	case OptCachingEnabled:
		return c.CachingEnabled, nil
	case OptIntervals:
		return append([]string(nil), c.Intervals...), nil
	case OptWheelMultiplier:
		return c.WheelMultiplier, nil
	case OptDragEdgeMarginPx:
		return c.DragEdgeMarginPx, nil
	case OptKeyStepPx:
		return c.KeyStepPx, nil
	}
	return nil, fmt.Errorf("%w: option %q", model.ErrUnknownProperty, key)
}

// Set assigns one option. Numeric options accept Go numbers or strings;
// time_offset also accepts RFC3339 and the span options accept values such
// as "6h" or "30min".
func (c *Config) Set(key string, value any) error {
	var err error
	switch key {
	case OptWidth:
		c.Width, err = toInt(value)
	case OptHeight:
		c.Height, err = toInt(value)
	case OptTimeOffset:
		c.TimeOffset, err = toSeconds(value, util.ParseTimestamp)
	case OptTimeLength:
		c.TimeLength, err = toSeconds(value, util.ParseSpan)
	case OptSecondsPerPixel:
		c.SecondsPerPixel, err = toFloat(value)
	case OptSecondsPerGridLine:
		c.SecondsPerGridLine, err = toSeconds(value, util.ParseSpan)
	case OptNumHorizontalGridLines:
		c.NumHorizontalGridLines, err = toInt(value)
	case OptAllowOverscroll:
		c.AllowOverscroll, err = toBool(value)
	case OptAxisFontSizePx:
		c.AxisFontSizePx, err = toFloat(value)
	case OptCachingEnabled:
		c.CachingEnabled, err = toBool(value)
	case OptIntervals:
		c.Intervals, err = toStrings(value)
	case OptWheelMultiplier:
		c.WheelMultiplier, err = toFloat(value)
	case OptDragEdgeMarginPx:
		c.DragEdgeMarginPx, err = toFloat(value)
	case OptKeyStepPx:
		c.KeyStepPx, err = toFloat(value)
	default:
		return fmt.Errorf("%w: option %q", model.ErrUnknownProperty, key)
	}
	if err != nil {
		return fmt.Errorf("option %q: %w", key, err)
	}
	return nil
}

func toInt(value any) (int, error) {
	n, err := toInt64(value)
	return int(n), err
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %v is not an integer", model.ErrInvalidOption, v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", model.ErrInvalidOption, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T is not an integer", model.ErrInvalidOption, value)
}

func toSeconds(value any, parse func(string) (int64, error)) (int64, error) {
	if s, ok := value.(string); ok {
		n, err := parse(strings.TrimSpace(s))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", model.ErrInvalidOption, err)
		}
		return n, nil
	}
	if d, ok := value.(time.Duration); ok {
		return int64(d / time.Second), nil
	}
	if t, ok := value.(time.Time); ok {
		return t.Unix(), nil
	}
	return toInt64(value)
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", model.ErrInvalidOption, v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", model.ErrInvalidOption, value)
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a boolean", model.ErrInvalidOption, v)
		}
		return b, nil
	}
	return false, fmt.Errorf("%w: %T is not a boolean", model.ErrInvalidOption, value)
}

func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T is not a list of names", model.ErrInvalidOption, value)
}
