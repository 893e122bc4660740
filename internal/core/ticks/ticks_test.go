package ticks

import (
	"math"
	"math/rand"
	"testing"

	"github.com/penwyp/go-timeplot/internal/core/coord"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeTicks(t *testing.T) {
	v := model.Viewport{TimeOffset: 1000, TimeLength: 7200, SecondsPerPixel: 60}

	ticks, err := TimeTicks(v, 3600)
	require.NoError(t, err)

	// 0 is the multiple at or below the offset; 7200 < 8200 is the last one.
	require.Len(t, ticks, 3)
	assert.Equal(t, int64(0), ticks[0].Seconds)
	assert.Equal(t, -17, ticks[0].X)
	assert.Equal(t, int64(3600), ticks[1].Seconds)
	assert.Equal(t, 43, ticks[1].X)
	assert.Equal(t, int64(7200), ticks[2].Seconds)
	assert.Equal(t, "1970-01-01 02:00", ticks[2].Label)
}

func TestTimeTicksExclusiveEnd(t *testing.T) {
	v := model.Viewport{TimeOffset: 0, TimeLength: 3600, SecondsPerPixel: 60}
	ticks, err := TimeTicks(v, 600)
	require.NoError(t, err)
	require.Len(t, ticks, 6)
	assert.Equal(t, int64(3000), ticks[5].Seconds)
}

func TestTimeTicksNegativeOffset(t *testing.T) {
	v := model.Viewport{TimeOffset: -50, TimeLength: 100, SecondsPerPixel: 1}
	ticks, err := TimeTicks(v, 60)
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, int64(-60), ticks[0].Seconds)
	assert.Equal(t, int64(0), ticks[1].Seconds)
}

func TestTimeTicksDegenerate(t *testing.T) {
	v := model.Viewport{TimeLength: 100, SecondsPerPixel: 1}
	_, err := TimeTicks(v, 0)
	assert.ErrorIs(t, err, model.ErrDegenerateStep)

	v.SecondsPerPixel = 0
	_, err = TimeTicks(v, 10)
	assert.ErrorIs(t, err, model.ErrDegenerateStep)
}

func TestPlanStep(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		span     float64
		gap      float64
		want     Step
	}{
		{name: "whole step from spec scenario", min: -1, max: 25, span: 500, gap: 19.2, want: Step{Size: 1, Decimals: 0}},
		{name: "large range rounds up", min: 0, max: 1000, span: 100, gap: 10, want: Step{Size: 100, Decimals: 0}},
		{name: "half exactly", min: 0, max: 5, span: 100, gap: 10, want: Step{Size: 1, Decimals: 0}},
		{name: "0.5 bucket", min: 0, max: 3, span: 100, gap: 10, want: Step{Size: 0.5, Decimals: 1}},
		{name: "0.2 bucket", min: 0, max: 1.5, span: 100, gap: 10, want: Step{Size: 0.2, Decimals: 1}},
		{name: "0.1 bucket", min: 0, max: 0.8, span: 100, gap: 10, want: Step{Size: 0.1, Decimals: 1}},
		{name: "two decimals", min: 0, max: 0.12, span: 100, gap: 10, want: Step{Size: 0.02, Decimals: 2}},
		{name: "four decimals", min: 20, max: 20.004, span: 100, gap: 10, want: Step{Size: 0.0005, Decimals: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanStep(tt.min, tt.max, tt.span, tt.gap)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Decimals, got.Decimals)
			assert.InDelta(t, tt.want.Size, got.Size, tt.want.Size*1e-9)
		})
	}
}

func TestPlanStepDegenerate(t *testing.T) {
	tests := []struct {
		name      string
		min, max  float64
		span, gap float64
	}{
		{name: "flat range", min: 5, max: 5, span: 100, gap: 10},
		{name: "inverted range", min: 5, max: 1, span: 100, gap: 10},
		{name: "zero span", min: 0, max: 1, span: 0, gap: 10},
		{name: "NaN", min: math.NaN(), max: 1, span: 100, gap: 10},
		{name: "infinite", min: 0, max: math.Inf(1), span: 100, gap: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanStep(tt.min, tt.max, tt.span, tt.gap)
			assert.ErrorIs(t, err, model.ErrDegenerateStep)
		})
	}
}

func TestPlanStepNeverZero(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		min := (rng.Float64() - 0.5) * math.Pow(10, float64(rng.Intn(12)-4))
		width := math.Pow(10, float64(rng.Intn(16)-8)) * (0.1 + rng.Float64())
		max := min + width
		if max <= min {
			continue
		}
		span := 1 + rng.Float64()*4000
		gap := 1 + rng.Float64()*40

		step, err := PlanStep(min, max, span, gap)
		require.NoError(t, err, "min=%v max=%v span=%v gap=%v", min, max, span, gap)
		assert.Greater(t, step.Size, 0.0)
		// The chosen step is never tighter than the requested label gap.
		raw := gap / (span / (max - min))
		assert.GreaterOrEqual(t, step.Size, raw*(1-1e-9))
	}
}

func TestValueAxisScenario(t *testing.T) {
	axis, err := ValueAxis(-1, 25, 500, 16)
	require.NoError(t, err)

	assert.Equal(t, Step{Size: 1, Decimals: 0}, axis.Step)
	require.Len(t, axis.Ticks, 24)
	assert.Equal(t, 0.0, axis.Ticks[0].Value)
	assert.Equal(t, "0", axis.Ticks[0].Label)
	assert.Equal(t, 481, axis.Ticks[0].Y)
	assert.Equal(t, 23.0, axis.Ticks[23].Value)
	assert.Equal(t, "23", axis.Ticks[23].Label)

	for i, tick := range axis.Ticks {
		assert.LessOrEqual(t, tick.Y, 484)
		assert.GreaterOrEqual(t, tick.Y, 32)
		if i > 0 {
			assert.Less(t, tick.Y, axis.Ticks[i-1].Y)
		}
	}
}

func TestValueAxisFractional(t *testing.T) {
	axis, err := ValueAxis(0, 1, 200, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, axis.Step.Decimals)
	require.NotEmpty(t, axis.Ticks)
	for _, tick := range axis.Ticks {
		assert.Len(t, tick.Label, 3) // one integer digit, dot, one decimal
	}
}

func TestValueAxisDegenerate(t *testing.T) {
	_, err := ValueAxis(3, 3, 500, 16)
	assert.ErrorIs(t, err, model.ErrDegenerateStep)
}

func TestValueAxisTinySpan(t *testing.T) {
	// The usable band is empty; the planner must return without ticks rather than spin.
	axis, err := ValueAxis(0, 10, 20, 16)
	require.NoError(t, err)
	assert.Empty(t, axis.Ticks)
}

func TestValueAxisNarrowRangeFarFromFloor(t *testing.T) {
	min, max := 0.99999, 1.00000
	axis, err := ValueAxis(min, max, 500, 10)
	require.NoError(t, err)
	require.NotEmpty(t, axis.Ticks)

	bottom := 500.0 - 10
	first := axis.Ticks[0]
	assert.LessOrEqual(t, float64(first.Y), bottom)
	assert.GreaterOrEqual(t, first.Value, min)

	below, err := coord.ValueToY(first.Value-axis.Step.Size, min, max, 500)
	require.NoError(t, err)
	assert.Greater(t, below, bottom, "no multiple of the step below the first tick fits the band")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", FormatValue(-0.0000001, 0))
	assert.Equal(t, "0.00", FormatValue(-0.001, 2))
	assert.Equal(t, "-1.5", FormatValue(-1.5, 1))
	assert.Equal(t, "0.30", FormatValue(0.1+0.2, 2))
}
