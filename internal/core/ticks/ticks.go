// Package ticks plans axis ticks: fixed-interval grid lines on the time axis
// and readable, evenly spaced labels on each value axis.
package ticks

import (
	"fmt"
	"math"
	"strconv"

	"github.com/penwyp/go-timeplot/internal/core/coord"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/util"
)

// LineHeight converts a font size into the minimum pixel gap between two
// value labels.
const LineHeight = 1.2

// maxDecimals bounds the precision search; float64 has no meaningful digits past it.
const maxDecimals = 324

// TimeTick is one vertical grid line on the time axis.
type TimeTick struct {
	Seconds int64  `json:"seconds"`
	X       int    `json:"x"`
	Label   string `json:"label"`
}

// ValueTick is one labelled horizontal position on a value axis.
type ValueTick struct {
	Value float64 `json:"value"`
	Y     int     `json:"y"`
	Label string  `json:"label"`
}

// Step is the spacing of a value axis and the precision its labels need.
type Step struct {
	Size     float64 `json:"size"`
	Decimals int     `json:"decimals"`
}

// Axis is a planned value axis.
type Axis struct {
	Step  Step        `json:"step"`
	Ticks []ValueTick `json:"ticks"`
}

// TimeTicks returns a tick at every multiple of secondsPerGridLine, starting
// at the multiple at or below the viewport's time offset and stopping before
// the end of the pannable domain.
func TimeTicks(v model.Viewport, secondsPerGridLine int64) ([]TimeTick, error) {
	if secondsPerGridLine <= 0 {
		return nil, fmt.Errorf("%w: grid interval %d", model.ErrDegenerateStep, secondsPerGridLine)
	}
	if v.SecondsPerPixel <= 0 {
		return nil, fmt.Errorf("%w: %v seconds per pixel", model.ErrDegenerateStep, v.SecondsPerPixel)
	}

	start := floorMultiple(v.TimeOffset, secondsPerGridLine)
	end := v.TimeEnd()
	out := make([]TimeTick, 0, (end-start)/secondsPerGridLine+1)
	for tick := start; tick < end; tick += secondsPerGridLine {
		out = append(out, TimeTick{
			Seconds: tick,
			X:       coord.SecondsToX(float64(tick), v),
			Label:   util.FormatTickTime(tick),
		})
	}
	return out, nil
}

// floorMultiple returns the largest multiple of step that is <= n.
func floorMultiple(n, step int64) int64 {
	m := n / step * step
	if m > n {
		m -= step
	}
	return m
}

// PlanStep picks the value delta between two labels so that neighbouring
// labels are at least gap pixels apart over a span of pixels covering
// [min, max]. Steps of at least one are whole numbers; smaller steps are
// 1, 2 or 5 times a power of ten.
func PlanStep(min, max, span, gap float64) (Step, error) {
	if !finite(min) || !finite(max) || !finite(span) || !finite(gap) || max <= min || span <= 0 || gap <= 0 {
		return Step{}, fmt.Errorf("%w: range [%v, %v] over %v px with gap %v", model.ErrDegenerateStep, min, max, span, gap)
	}

	raw := gap / (span / (max - min))
	var step Step
	if raw >= 0.5 {
		step = Step{Size: math.Ceil(raw), Decimals: 0}
	} else {
		step = fractionalStep(raw)
	}

	if step.Size == 0 || !finite(step.Size) {
		return Step{}, fmt.Errorf("%w: range [%v, %v] over %v px", model.ErrDegenerateStep, min, max, span)
	}
	return step, nil
}

func fractionalStep(raw float64) Step {
	for d := 1; d <= maxDecimals; d++ {
		scale := math.Pow(10, float64(d-1))
		s := raw * scale
		if s < 0.05 {
			continue
		}
		bucket := 0.5
		switch {
		case s < 0.1:
			bucket = 0.1
		case s < 0.2:
			bucket = 0.2
		}
		return Step{Size: bucket / scale, Decimals: d}
	}
	return Step{}
}

// ValueAxis plans the labelled ticks of one value axis. The first tick is the
// first multiple of the step at or above floor(min) that clears the bottom
// band of one font height; ticks continue upward while they stay below the top
// band of two font heights.
func ValueAxis(min, max, span, fontPx float64) (Axis, error) {
	step, err := PlanStep(min, max, span, fontPx*LineHeight)
	if err != nil {
		return Axis{}, err
	}

	start := math.Floor(math.Floor(min)/step.Size) * step.Size
	bottom := span - fontPx
	top := fontPx * 2

	limit := int(math.Ceil((max-start)/step.Size)) + 1
	yAt := func(i int) (float64, error) {
		return coord.ValueToY(start+float64(i)*step.Size, min, max, span)
	}

	// Jump to the first multiple inside the bottom band, then settle across
	// rounding error at its edge.
	lowest, err := coord.YToValue(bottom, min, max, span)
	if err != nil {
		return Axis{}, err
	}
	first := int(math.Max(0, math.Min(math.Ceil((lowest-start)/step.Size), float64(limit+1))))
	for first > 0 {
		y, err := yAt(first - 1)
		if err != nil {
			return Axis{}, err
		}
		if y > bottom {
			break
		}
		first--
	}
	for ; first <= limit; first++ {
		y, err := yAt(first)
		if err != nil {
			return Axis{}, err
		}
		if y <= bottom {
			break
		}
	}

	axis := Axis{Step: step}
	for i := first; i <= limit; i++ {
		value := start + float64(i)*step.Size
		y, err := yAt(i)
		if err != nil {
			return Axis{}, err
		}
		if y < top {
			break
		}
		axis.Ticks = append(axis.Ticks, ValueTick{
			Value: value,
			Y:     int(math.Round(y)),
			Label: FormatValue(value, step.Decimals),
		})
	}
	return axis, nil
}

// FormatValue renders a tick value with a fixed number of decimals.
func FormatValue(value float64, decimals int) string {
	s := strconv.FormatFloat(value, 'f', decimals, 64)
	if isNegativeZero(s) {
		return s[1:]
	}
	return s
}

func isNegativeZero(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	for _, c := range s[1:] {
		if c != '0' && c != '.' {
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
