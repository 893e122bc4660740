package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset = "\033[0m"
	ColorDim   = "\033[2m"
	ColorCyan  = "\033[36m"
	ColorRed   = "\033[31m"
	ColorBold  = "\033[1m"

	ClearScreen       = "\033[2J"     // Clear entire screen
	ClearLine         = "\033[2K"     // Clear entire line
	ClearToEnd        = "\033[J"      // Clear from cursor to end of screen
	ClearScrollback   = "\033[3J"     // Clear scrollback buffer
	EnterAltScreen    = "\033[?1049h" // Switch to alternate screen buffer
	ExitAltScreen     = "\033[?1049l" // Back to the normal buffer
	MoveCursorHome    = "\033[H"      // Move cursor to home position
	HideCursor        = "\033[?25l"   // Hide cursor
	ShowCursor        = "\033[?25h"   // Show cursor
	ResetScrollRegion = "\033[r"      // Reset scroll region
)

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads s with spaces to width display cells, truncating when longer.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := runewidth.StringWidth(s)
	if w > width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

// PadLeft right-aligns s in width display cells.
func PadLeft(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := runewidth.StringWidth(s)
	if w > width {
		return runewidth.Truncate(s, width, "")
	}
	return strings.Repeat(" ", width-w) + s
}

// CenterText centers text within the given width
func CenterText(text string, width int) string {
	w := runewidth.StringWidth(text)
	if w >= width {
		return runewidth.Truncate(text, width, "")
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-padding-w)
}

// MoveCursor returns ANSI sequence to move cursor to specific position
func MoveCursor(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row, col)
}

// FormatHeaderTitle formats main header titles (Cyan + Bold)
func FormatHeaderTitle(title string) string {
	return ColorBold + ColorCyan + title + ColorReset
}

// FormatDim renders secondary text.
func FormatDim(s string) string {
	return ColorDim + s + ColorReset
}

// HexColor returns the 24-bit foreground escape for a #rrggbb color, or ""
// when hex is not in that form.
func HexColor(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return ""
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff)
}

// Colorize wraps s in the foreground color for hex. Unknown colors leave s unchanged.
func Colorize(hex, s string) string {
	code := HexColor(hex)
	if code == "" {
		return s
	}
	return code + s + ColorReset
}
