package coord

import (
	"math"
	"math/rand"
	"testing"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsToX(t *testing.T) {
	v := model.Viewport{TimeOffset: 1000, TimeLength: 3600, SecondsPerPixel: 60}

	tests := []struct {
		name    string
		seconds float64
		want    int
	}{
		{name: "left edge", seconds: 1000, want: 0},
		{name: "one pixel", seconds: 1060, want: 1},
		{name: "rounds down", seconds: 1029, want: 0},
		{name: "rounds up", seconds: 1031, want: 1},
		{name: "before offset", seconds: 880, want: -2},
		{name: "right edge", seconds: 4600, want: 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecondsToX(tt.seconds, v))
		})
	}
	assert.Equal(t, 60, XMax(v))
}

func TestXToSeconds(t *testing.T) {
	v := model.Viewport{TimeOffset: 1000, SecondsPerPixel: 60}
	assert.Equal(t, 1000.0, XToSeconds(0, v))
	assert.Equal(t, 1600.0, XToSeconds(10, v))
	assert.Equal(t, 970.0, XToSeconds(-0.5, v))
}

func TestSecondsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		v := model.Viewport{
			TimeOffset:      rng.Int63n(2_000_000_000) - 1_000_000_000,
			SecondsPerPixel: 0.5 + rng.Float64()*600,
		}
		seconds := float64(v.TimeOffset) + rng.Float64()*1_000_000
		back := XToSeconds(float64(SecondsToX(seconds, v)), v)
		assert.InDelta(t, seconds, back, v.SecondsPerPixel/2+1e-6)
	}
}

func TestValueToY(t *testing.T) {
	y, err := ValueToY(0, 0, 100, 500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, y)

	y, err = ValueToY(100, 0, 100, 500)
	require.NoError(t, err)
	assert.Equal(t, 0.0, y)

	y, err = ValueToY(25, 0, 100, 500)
	require.NoError(t, err)
	assert.Equal(t, 375.0, y)

	// Larger values sit higher on screen.
	lo, _ := ValueToY(10, -5, 30, 200)
	hi, _ := ValueToY(20, -5, 30, 200)
	assert.Less(t, hi, lo)
}

func TestValueToYDegenerate(t *testing.T) {
	_, err := ValueToY(1, 5, 5, 100)
	assert.ErrorIs(t, err, model.ErrDegenerateRange)

	_, err = YToValue(1, 5, 5, 100)
	assert.ErrorIs(t, err, model.ErrDegenerateRange)

	_, err = ValueToY(1, math.NaN(), 5, 100)
	assert.ErrorIs(t, err, model.ErrDegenerateRange)

	_, err = YToValue(1, 0, 5, 0)
	assert.ErrorIs(t, err, model.ErrDegenerateRange)
}

func TestValueRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		min := rng.Float64()*200 - 100
		max := min + 0.001 + rng.Float64()*1000
		height := 1 + rng.Float64()*2000
		value := min + rng.Float64()*(max-min)*1.5

		y, err := ValueToY(value, min, max, height)
		require.NoError(t, err)
		back, err := YToValue(y, min, max, height)
		require.NoError(t, err)
		assert.InDelta(t, value, back, 1e-6*math.Max(1, math.Abs(value)))
	}
}
