// Package coord converts between domain units and device pixels. The time
// axis is shared by all series; each series has its own value range.
package coord

import (
	"fmt"
	"math"

	"github.com/penwyp/go-timeplot/internal/core/model"
)

// SecondsToXf maps seconds to an unrounded x pixel position.
func SecondsToXf(seconds float64, v model.Viewport) float64 {
	return (seconds - float64(v.TimeOffset)) / v.SecondsPerPixel
}

// SecondsToX maps seconds to the nearest x pixel.
func SecondsToX(seconds float64, v model.Viewport) int {
	return int(math.Round(SecondsToXf(seconds, v)))
}

// XToSeconds maps an x pixel back to seconds.
func XToSeconds(x float64, v model.Viewport) float64 {
	return x*v.SecondsPerPixel + float64(v.TimeOffset)
}

// XMax returns the pixel position of the right edge of the pannable domain.
func XMax(v model.Viewport) int {
	return SecondsToX(float64(v.TimeEnd()), v)
}

// ValueToY maps a value into a top-down pixel space of the given height:
// min lands on the bottom edge, max on the top.
func ValueToY(value, min, max, height float64) (float64, error) {
	if err := checkRange(min, max); err != nil {
		return 0, err
	}
	return height - height*(value-min)/(max-min), nil
}

// YToValue is the inverse of ValueToY.
func YToValue(y, min, max, height float64) (float64, error) {
	if err := checkRange(min, max); err != nil {
		return 0, err
	}
	if height == 0 {
		return 0, fmt.Errorf("%w: zero pixel height", model.ErrDegenerateRange)
	}
	return min + (height-y)*(max-min)/height, nil
}

func checkRange(min, max float64) error {
	if max == min || math.IsNaN(min) || math.IsNaN(max) || math.IsInf(max-min, 0) {
		return fmt.Errorf("%w: [%v, %v]", model.ErrDegenerateRange, min, max)
	}
	return nil
}
