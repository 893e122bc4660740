// Package viewport owns the horizontal scroll position of a chart and turns
// pointer, wheel and keyboard input into clamped pan operations.
package viewport

import (
	"math"
	"sync"

	"github.com/penwyp/go-timeplot/internal/core/coord"
	"github.com/penwyp/go-timeplot/internal/core/model"
)

// Input defaults
const (
	DefaultWheelMultiplier  = 10.0
	DefaultDragEdgeMarginPx = 2.0
	DefaultKeyStepPx        = 20.0
)

// DragState is the pointer state of the controller.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Direction of a keyboard step.
type Direction int

const (
	Left  Direction = -1
	Right Direction = 1
)

// Settings tunes how raw input maps to pan deltas.
type Settings struct {
	WheelMultiplier  float64
	DragEdgeMarginPx float64
	KeyStepPx        float64
}

// Validate fills zero values with defaults.
func (s *Settings) Validate() {
	if s.WheelMultiplier == 0 {
		s.WheelMultiplier = DefaultWheelMultiplier
	}
	if s.DragEdgeMarginPx <= 0 {
		s.DragEdgeMarginPx = DefaultDragEdgeMarginPx
	}
	if s.KeyStepPx <= 0 {
		s.KeyStepPx = DefaultKeyStepPx
	}
}

// Controller applies pan deltas to a viewport and keeps its offset inside the
// pannable domain unless overscroll is allowed. It is safe for concurrent use.
type Controller struct {
	mu       sync.RWMutex
	state    model.Viewport
	settings Settings

	drag  DragState
	lastX float64

	onChange func(model.Viewport)
}

// NewController creates a controller for v. The initial offset is clamped.
func NewController(v model.Viewport, settings Settings) *Controller {
	settings.Validate()
	c := &Controller{settings: settings}
	v.XOffset = clamp(v.XOffset, v)
	c.state = v
	return c
}

// OnChange registers fn to be called after every state change. fn runs with
// no lock held and receives a copy of the new state.
func (c *Controller) OnChange(fn func(model.Viewport)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns a copy of the current viewport.
func (c *Controller) State() model.Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// DragState returns the current pointer state.
func (c *Controller) DragState() DragState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drag
}

// Settings returns the input settings.
func (c *Controller) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// SetState replaces the viewport wholesale. The offset is re-clamped and the
// drag state is reset.
func (c *Controller) SetState(v model.Viewport) {
	c.mu.Lock()
	v.XOffset = clamp(v.XOffset, v)
	changed := v != c.state
	c.state = v
	c.drag = Idle
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(v)
	}
}

// SetSettings replaces the input settings.
func (c *Controller) SetSettings(s Settings) {
	s.Validate()
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
}

// Pan moves the offset by delta pixels and reports whether the state changed.
// A zero delta is a no-op.
func (c *Controller) Pan(delta float64) bool {
	if delta == 0 || math.IsNaN(delta) {
		return false
	}
	c.mu.Lock()
	v, changed := c.panLocked(delta)
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(v)
	}
	return changed
}

func (c *Controller) panLocked(delta float64) (model.Viewport, bool) {
	next := clamp(c.state.XOffset+delta, c.state)
	if next == c.state.XOffset {
		return c.state, false
	}
	c.state.XOffset = next
	return c.state, true
}

// PointerDown enters Dragging when x is inside the viewport.
func (c *Controller) PointerDown(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || x > float64(c.state.WidthPx) {
		return
	}
	c.drag = Dragging
	c.lastX = x
}

// PointerMove pans by the distance moved since the last pointer event while
// dragging. Moving into the edge margin ends the drag without panning.
func (c *Controller) PointerMove(x float64) bool {
	c.mu.Lock()
	if c.drag != Dragging {
		c.mu.Unlock()
		return false
	}
	margin := c.settings.DragEdgeMarginPx
	if x <= margin || x+margin > float64(c.state.WidthPx) {
		c.drag = Idle
		c.mu.Unlock()
		return false
	}

	delta := c.lastX - x
	c.lastX = x
	if delta == 0 {
		c.mu.Unlock()
		return false
	}
	v, changed := c.panLocked(delta)
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(v)
	}
	return changed
}

// PointerUp ends a drag.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	c.drag = Idle
	c.mu.Unlock()
}

// Wheel pans by dx*k and then dy*k, k being the wheel multiplier. It never
// enters Dragging.
func (c *Controller) Wheel(dx, dy float64) bool {
	k := c.Settings().WheelMultiplier
	movedX := c.Pan(dx * k)
	movedY := c.Pan(dy * k)
	return movedX || movedY
}

// Step pans one keyboard step in the given direction.
func (c *Controller) Step(dir Direction) bool {
	return c.Pan(float64(dir) * c.Settings().KeyStepPx)
}

// Reset scrolls back to the left edge of the domain.
func (c *Controller) Reset() bool {
	c.mu.Lock()
	c.drag = Idle
	if c.state.XOffset == 0 {
		c.mu.Unlock()
		return false
	}
	c.state.XOffset = 0
	v := c.state
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(v)
	}
	return true
}

// End scrolls to the right edge of the domain.
func (c *Controller) End() bool {
	v := c.State()
	return c.Pan(MaxOffset(v) - v.XOffset)
}

// MaxOffset returns the largest offset reachable without overscroll. When the
// domain is narrower than the viewport it is 0.
func MaxOffset(v model.Viewport) float64 {
	if v.SecondsPerPixel <= 0 {
		return 0
	}
	return math.Max(0, float64(coord.XMax(v)-v.WidthPx))
}

func clamp(offset float64, v model.Viewport) float64 {
	if math.IsNaN(offset) {
		return 0
	}
	if v.AllowOverscroll {
		return offset
	}
	return math.Min(math.Max(offset, 0), MaxOffset(v))
}
