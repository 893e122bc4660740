// Package display owns the terminal screen of the live chart.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/presentation/interaction"
	"github.com/penwyp/go-timeplot/internal/presentation/layout"
	"github.com/penwyp/go-timeplot/internal/util"
)

// DisplayMode is the kind of screen currently shown.
type DisplayMode int

const (
	ModeNormal DisplayMode = iota
	ModeHelp
	ModeLoading
)

// Frame is one screen of chart content.
type Frame struct {
	Title  string
	Chart  []string
	Status string
}

// TerminalDisplay draws frames into the alternate screen buffer, rewriting
// only the lines that changed since the previous frame.
type TerminalDisplay struct {
	out               io.Writer
	sizer             *layout.Sizer
	inAlternateScreen bool
	previousScreen    []string
	isFirstRender     bool
	currentMode       DisplayMode
	lastDraw          time.Time
}

// NewTerminalDisplay writes to out, or stdout when out is nil.
func NewTerminalDisplay(out io.Writer, sizer *layout.Sizer) *TerminalDisplay {
	if out == nil {
		out = os.Stdout
	}
	if sizer == nil {
		sizer = layout.NewSizer(layout.DefaultCols, layout.DefaultRows)
	}
	return &TerminalDisplay{
		out:           out,
		sizer:         sizer,
		isFirstRender: true,
	}
}

// SetSizer updates the screen size, forcing a full redraw.
func (td *TerminalDisplay) SetSizer(sizer *layout.Sizer) {
	td.sizer = sizer
	td.isFirstRender = true
}

// Sizer returns the current screen size.
func (td *TerminalDisplay) Sizer() *layout.Sizer {
	return td.sizer
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.EnterAltScreen, util.ClearScreen, util.ClearScrollback,
		util.ResetScrollRegion, util.HideCursor, util.MoveCursorHome)
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen, util.MoveCursorHome, util.ShowCursor, util.ExitAltScreen)
	td.inAlternateScreen = false
}

// ClearForTransition clears the screen and forgets the previous frame.
func (td *TerminalDisplay) ClearForTransition() {
	fmt.Fprint(td.out, util.ClearScreen, util.ClearScrollback, util.MoveCursorHome)
	td.previousScreen = nil
}

// determineDisplayMode determines the current display mode based on interaction state
func (td *TerminalDisplay) determineDisplayMode(state model.InteractionState) DisplayMode {
	// Priority order: Help > Loading > Normal
	if state.ShowHelp {
		return ModeHelp
	}
	if state.IsLoading {
		return ModeLoading
	}
	return ModeNormal
}

// RenderWithState draws frame, or the help/loading screen the state asks for.
func (td *TerminalDisplay) RenderWithState(frame Frame, state model.InteractionState) {
	newMode := td.determineDisplayMode(state)
	if td.isFirstRender || newMode != td.currentMode {
		td.ClearForTransition()
		td.isFirstRender = false
		td.currentMode = newMode
	}

	var screen []string
	switch newMode {
	case ModeHelp:
		screen = td.helpLines()
	case ModeLoading:
		screen = td.loadingLines(state.LoadingMessage)
	default:
		screen = td.frameLines(frame, state)
	}

	td.draw(screen)
	td.lastDraw = time.Now()
}

func (td *TerminalDisplay) frameLines(frame Frame, state model.InteractionState) []string {
	lines := make([]string, 0, len(frame.Chart)+2)
	if frame.Title != "" {
		lines = append(lines, util.FormatHeaderTitle(td.sizer.FitLine(frame.Title)))
	}
	lines = append(lines, frame.Chart...)

	status := frame.Status
	if state.IsPaused {
		status = "[PAUSED] " + status
	}
	if state.StatusMessage != "" {
		status += "  " + state.StatusMessage
	}
	if status != "" {
		lines = append(lines, util.FormatDim(td.sizer.FitLine(status)))
	}
	return lines
}

func (td *TerminalDisplay) helpLines() []string {
	width := min(td.sizer.Width, 60)
	lines := []string{
		util.FormatHeaderTitle("go-timeplot - Help"),
		strings.Repeat("═", width),
		"",
		"Keyboard Shortcuts:",
		"",
	}
	for _, kh := range interaction.KeyHelp {
		lines = append(lines, "  "+util.PadRight(kh[0], 10)+" - "+kh[1])
	}
	lines = append(lines, "", strings.Repeat("═", width), "Press '?' to return...")
	return lines
}

func (td *TerminalDisplay) loadingLines(message string) []string {
	if message == "" {
		message = "Loading data..."
	}
	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := spinner[int(time.Now().Unix())%len(spinner)]

	boxWidth := min(max(td.sizer.Width-4, 20), 50)
	padding := strings.Repeat(" ", max((td.sizer.Width-boxWidth)/2, 0))
	inner := boxWidth - 2

	lines := make([]string, 0, td.sizer.Height/2+6)
	for i := 0; i < td.sizer.Height/2-4; i++ {
		lines = append(lines, "")
	}
	return append(lines,
		padding+"╔"+strings.Repeat("═", inner)+"╗",
		padding+"║"+util.CenterText("go-timeplot", inner)+"║",
		padding+"╠"+strings.Repeat("═", inner)+"╣",
		padding+"║"+util.CenterText(frame+" "+message, inner)+"║",
		padding+"║"+util.CenterText("Press 'q' to quit", inner)+"║",
		padding+"╚"+strings.Repeat("═", inner)+"╝",
	)
}

// draw rewrites changed lines in place, which keeps any selection in
// untouched lines, and clears whatever the previous frame left below.
func (td *TerminalDisplay) draw(screen []string) {
	var b strings.Builder
	for i, line := range screen {
		if i < len(td.previousScreen) && td.previousScreen[i] == line {
			continue
		}
		b.WriteString(util.MoveCursor(i+1, 1))
		b.WriteString(util.ClearLine)
		b.WriteString(line)
	}
	if len(td.previousScreen) > len(screen) {
		b.WriteString(util.MoveCursor(len(screen)+1, 1))
		b.WriteString(util.ClearToEnd)
	}
	if b.Len() > 0 {
		fmt.Fprint(td.out, b.String())
	}
	td.previousScreen = append(td.previousScreen[:0], screen...)
}
