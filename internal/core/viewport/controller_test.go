package viewport

import (
	"math/rand"
	"testing"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dayViewport spans 24 hours at one minute per pixel: xMax = 1440.
func dayViewport(width int) model.Viewport {
	return model.Viewport{
		TimeOffset:      1_700_000_000,
		TimeLength:      86400,
		SecondsPerPixel: 60,
		WidthPx:         width,
	}
}

func TestPanClampsWhenContentNarrowerThanViewport(t *testing.T) {
	v := model.Viewport{TimeOffset: 0, TimeLength: 3600, SecondsPerPixel: 60, WidthPx: 100}
	c := NewController(v, Settings{})

	for _, delta := range []float64{1, -1, 50, -50, 1000, -1000} {
		c.Pan(delta)
		assert.Equal(t, 0.0, c.State().XOffset, "delta %v", delta)
	}
}

func TestPan(t *testing.T) {
	tests := []struct {
		name        string
		start       float64
		delta       float64
		want        float64
		wantChanged bool
	}{
		{name: "zero delta is a no-op", start: 100, delta: 0, want: 100},
		{name: "pan right", start: 100, delta: 40, want: 140, wantChanged: true},
		{name: "pan left", start: 100, delta: -40, want: 60, wantChanged: true},
		{name: "clamp at left edge", start: 10, delta: -40, want: 0, wantChanged: true},
		{name: "clamp at right edge", start: 1300, delta: 500, want: 1340, wantChanged: true},
		{name: "already at left edge", start: 0, delta: -5, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := dayViewport(100)
			v.XOffset = tt.start
			c := NewController(v, Settings{})

			changed := c.Pan(tt.delta)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.want, c.State().XOffset)
		})
	}
}

func TestPanOverscroll(t *testing.T) {
	v := dayViewport(100)
	v.AllowOverscroll = true
	c := NewController(v, Settings{})

	require.True(t, c.Pan(-30))
	assert.Equal(t, -30.0, c.State().XOffset)
	require.True(t, c.Pan(5000))
	assert.Equal(t, 4970.0, c.State().XOffset)
}

func TestPanClampingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v := model.Viewport{
			TimeOffset:      rng.Int63n(1_000_000) - 500_000,
			TimeLength:      rng.Int63n(200_000),
			SecondsPerPixel: float64(1 + rng.Intn(120)),
			WidthPx:         1 + rng.Intn(800),
		}
		c := NewController(v, Settings{})
		max := MaxOffset(v)
		for j := 0; j < 200; j++ {
			c.Pan((rng.Float64() - 0.5) * 2000)
			off := c.State().XOffset
			require.GreaterOrEqual(t, off, 0.0)
			require.LessOrEqual(t, off, max)
		}
	}
}

func TestNewControllerClampsInitialOffset(t *testing.T) {
	v := dayViewport(100)
	v.XOffset = 99999
	c := NewController(v, Settings{})
	assert.Equal(t, 1340.0, c.State().XOffset)
}

func TestDragging(t *testing.T) {
	v := dayViewport(200)
	v.XOffset = 500
	c := NewController(v, Settings{})

	// Moves are ignored while idle.
	assert.False(t, c.PointerMove(50))
	assert.Equal(t, Idle, c.DragState())

	c.PointerDown(100)
	require.Equal(t, Dragging, c.DragState())

	// Dragging right reveals earlier data, so the offset shrinks.
	assert.True(t, c.PointerMove(130))
	assert.Equal(t, 470.0, c.State().XOffset)
	assert.True(t, c.PointerMove(90))
	assert.Equal(t, 510.0, c.State().XOffset)

	c.PointerUp()
	assert.Equal(t, Idle, c.DragState())
	assert.False(t, c.PointerMove(10))
	assert.Equal(t, 510.0, c.State().XOffset)
}

func TestDragOutsideViewportIgnored(t *testing.T) {
	c := NewController(dayViewport(200), Settings{})
	c.PointerDown(-1)
	assert.Equal(t, Idle, c.DragState())
	c.PointerDown(201)
	assert.Equal(t, Idle, c.DragState())
}

func TestDragEdgeMarginExitsDragging(t *testing.T) {
	tests := []struct {
		name string
		x    float64
	}{
		{name: "left margin", x: 2},
		{name: "right margin", x: 199},
		{name: "outside", x: 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := dayViewport(200)
			v.XOffset = 500
			c := NewController(v, Settings{})
			c.PointerDown(100)

			assert.False(t, c.PointerMove(tt.x))
			assert.Equal(t, Idle, c.DragState())
			assert.Equal(t, 500.0, c.State().XOffset)
		})
	}
}

func TestWheel(t *testing.T) {
	v := dayViewport(100)
	v.XOffset = 500
	c := NewController(v, Settings{})

	assert.True(t, c.Wheel(3, 0))
	assert.Equal(t, 530.0, c.State().XOffset)
	assert.True(t, c.Wheel(0, -2))
	assert.Equal(t, 510.0, c.State().XOffset)
	assert.True(t, c.Wheel(1, 1))
	assert.Equal(t, 530.0, c.State().XOffset)
	assert.False(t, c.Wheel(0, 0))
	assert.Equal(t, Idle, c.DragState())
}

func TestWheelCustomMultiplier(t *testing.T) {
	c := NewController(dayViewport(100), Settings{WheelMultiplier: 1})
	c.Wheel(7, 0)
	assert.Equal(t, 7.0, c.State().XOffset)
}

func TestStepResetEnd(t *testing.T) {
	c := NewController(dayViewport(100), Settings{KeyStepPx: 25})

	assert.False(t, c.Step(Left))
	assert.True(t, c.Step(Right))
	assert.True(t, c.Step(Right))
	assert.Equal(t, 50.0, c.State().XOffset)

	assert.True(t, c.End())
	assert.Equal(t, 1340.0, c.State().XOffset)
	assert.False(t, c.End())

	assert.True(t, c.Reset())
	assert.Equal(t, 0.0, c.State().XOffset)
	assert.False(t, c.Reset())
}

func TestOnChange(t *testing.T) {
	c := NewController(dayViewport(100), Settings{})

	var seen []float64
	c.OnChange(func(v model.Viewport) { seen = append(seen, v.XOffset) })

	c.Pan(0)
	c.Pan(10)
	c.Pan(-100)
	c.Pan(-1)

	assert.Equal(t, []float64{10, 0}, seen)
}

func TestSetState(t *testing.T) {
	c := NewController(dayViewport(100), Settings{})
	c.PointerDown(50)

	next := dayViewport(1000)
	next.XOffset = 900
	c.SetState(next)

	got := c.State()
	assert.Equal(t, 1000, got.WidthPx)
	assert.Equal(t, 440.0, got.XOffset)
	assert.Equal(t, Idle, c.DragState())
}

func TestMaxOffset(t *testing.T) {
	assert.Equal(t, 1340.0, MaxOffset(dayViewport(100)))
	assert.Equal(t, 0.0, MaxOffset(dayViewport(5000)))
	assert.Equal(t, 0.0, MaxOffset(model.Viewport{WidthPx: 10}))
}
