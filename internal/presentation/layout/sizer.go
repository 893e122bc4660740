// Package layout sizes terminal output.
package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-timeplot/internal/presentation/render"
	"github.com/penwyp/go-timeplot/internal/util"
	"golang.org/x/term"
)

// Fallback size when stdout is not a terminal.
const (
	DefaultCols = 80
	DefaultRows = 24

	minCols = 20
	minRows = 6
)

// Sizer holds the character size of the output area.
type Sizer struct {
	Width  int
	Height int
}

func NewSizer(width, height int) *Sizer {
	return &Sizer{Width: width, Height: height}
}

// DetectSizer reads the size of the terminal behind stdout.
func DetectSizer() *Sizer {
	return DetectSizerFd(int(os.Stdout.Fd()))
}

// DetectSizerFd reads the size of the terminal behind fd, falling back to
// 80x24 when fd is not a terminal.
func DetectSizerFd(fd int) *Sizer {
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 || height <= 0 {
		util.LogDebugf("terminal size unavailable, using %dx%d: %v", DefaultCols, DefaultRows, err)
		return NewSizer(DefaultCols, DefaultRows)
	}
	return NewSizer(width, height)
}

// IsTerminal reports whether stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TextOptions sizes the chart grid, leaving reserved lines for a header or
// status bar. The grid never shrinks below a readable minimum.
func (s *Sizer) TextOptions(reserved int, color bool) render.TextOptions {
	cols := max(s.Width, minCols)
	rows := max(s.Height-reserved, minRows)
	return render.TextOptions{Cols: cols, Rows: rows, Color: color}
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (s *Sizer) PadString(str string, width int, leftAlign bool) string {
	actualWidth := runewidth.StringWidth(str)
	if actualWidth >= width {
		return str
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return str + padding
	}
	return padding + str
}

// FitLine truncates str to the sizer width.
func (s *Sizer) FitLine(str string) string {
	if s.Width <= 0 {
		return ""
	}
	return runewidth.Truncate(str, s.Width, "…")
}
