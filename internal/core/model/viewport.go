package model

// Viewport is the pannable window over the time domain. It is a value
// object: callers replace it wholesale instead of mutating shared copies.
type Viewport struct {
	TimeOffset      int64   // left edge of the pannable domain, epoch seconds
	TimeLength      int64   // width of the pannable domain in seconds
	SecondsPerPixel float64 // zoom; fixed for the lifetime of a chart
	XOffset         float64 // current horizontal scroll position in pixels
	AllowOverscroll bool
	WidthPx         int // visible width of the viewport
}

// TimeEnd returns the right edge of the pannable domain.
func (v Viewport) TimeEnd() int64 {
	return v.TimeOffset + v.TimeLength
}

// Contains reports whether seconds lies inside the pannable domain.
func (v Viewport) Contains(seconds int64) bool {
	return seconds >= v.TimeOffset && seconds <= v.TimeEnd()
}
