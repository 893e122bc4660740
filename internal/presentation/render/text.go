package render

import (
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/ticks"
	"github.com/penwyp/go-timeplot/internal/util"
)

const (
	markerLine = '•'
	markerBar  = '█'
	gridH      = '─'
	gridV      = '│'
	gridCross  = '┼'

	// legend, axis rule and time labels
	chromeRows = 3
)

// TextOptions sizes the character grid of the terminal renderer.
type TextOptions struct {
	Cols  int
	Rows  int
	Color bool
}

// Text writes the terminal rendition of g, one line per row.
func Text(w io.Writer, g chart.Geometry, opts TextOptions) error {
	for _, line := range TextLines(g, opts) {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// TextLines rasterizes the visible window of g into at most opts.Rows lines.
// The pixel space of the chart is scaled onto the plot area; the first
// series with an axis labels the left gutter.
func TextLines(g chart.Geometry, opts TextOptions) []string {
	if opts.Cols <= 0 || opts.Rows <= 0 {
		return nil
	}

	lines := []string{legend(g, opts)}
	plotRows := opts.Rows - chromeRows
	if plotRows < 1 || g.Width <= 0 || g.Height <= 0 {
		return lines
	}

	axis := primaryAxis(g)
	gutter := 0
	for _, t := range axis.Ticks {
		gutter = max(gutter, runewidth.StringWidth(t.Label))
	}
	if gutter > 0 {
		gutter++
	}
	plotCols := opts.Cols - gutter
	if plotCols < 1 {
		return lines
	}

	p := projector{xOffset: g.Viewport.XOffset, width: g.Width, height: g.Height, cols: plotCols, rows: plotRows}
	cv := newCanvas(plotCols, plotRows)

	for _, y := range g.GridLines {
		row := p.row(y)
		for col := 0; col < plotCols; col++ {
			cv.grid(col, row, gridH)
		}
	}
	for _, tt := range g.TimeTicks {
		if col, ok := p.col(tt.X); ok {
			for row := 0; row < plotRows; row++ {
				cv.grid(col, row, gridV)
			}
		}
	}
	for _, s := range g.Series {
		drawSeries(cv, p, s)
	}

	labels := make(map[int]string, len(axis.Ticks))
	for _, t := range axis.Ticks {
		labels[p.row(t.Y)] = t.Label
	}

	margin := strings.Repeat(" ", gutter)
	for row := 0; row < plotRows; row++ {
		prefix := margin
		if gutter > 0 {
			prefix = util.PadLeft(labels[row], gutter-1) + " "
		}
		lines = append(lines, prefix+cv.line(row, opts.Color))
	}
	lines = append(lines, margin+strings.Repeat(string(gridH), plotCols))
	lines = append(lines, margin+timeLabels(g.TimeTicks, p))
	return lines
}

// legend lists every series with its marker, fitted to the line width.
func legend(g chart.Geometry, opts TextOptions) string {
	var b strings.Builder
	used := 0
	for i, s := range g.Series {
		marker := string(markerLine)
		if s.Type == model.DisplayBar {
			marker = string(markerBar)
		}
		label := s.Name
		if s.Unit != "" {
			label += " (" + s.Unit + ")"
		}
		if !s.HasData {
			label += " no data"
		}

		entry := marker + " " + label
		if i > 0 {
			entry = "  " + entry
		}
		w := runewidth.StringWidth(entry)
		if used+w > opts.Cols {
			break
		}
		used += w

		if opts.Color {
			if i > 0 {
				b.WriteString("  ")
				entry = entry[2:]
			}
			b.WriteString(util.Colorize(s.Color, marker))
			b.WriteString(entry[len(marker):])
			continue
		}
		b.WriteString(entry)
	}
	return b.String()
}

func primaryAxis(g chart.Geometry) ticks.Axis {
	for _, s := range g.Series {
		if len(s.Axis.Ticks) > 0 {
			return s.Axis
		}
	}
	return ticks.Axis{}
}

func drawSeries(cv *canvas, p projector, s chart.SeriesGeometry) {
	marker := markerLine
	if s.Type == model.DisplayBar {
		marker = markerBar
	}

	var prevCol float64
	var prevRow int
	for i, pt := range s.Points {
		col := p.colf(pt.X)
		row := p.row(pt.Y)

		if s.Type == model.DisplayBar {
			c := int(math.Floor(col))
			for r := row; r < p.rows; r++ {
				cv.set(c, r, marker, s.Color)
			}
			continue
		}

		// Fill the columns between two samples so the line stays connected.
		if i > 0 && col > prevCol {
			for c := int(math.Floor(prevCol)) + 1; float64(c) < math.Floor(col); c++ {
				frac := (float64(c) - prevCol) / (col - prevCol)
				r := prevRow + int(math.Round(frac*float64(row-prevRow)))
				cv.set(c, r, marker, s.Color)
			}
		}
		cv.set(int(math.Floor(col)), row, marker, s.Color)
		prevCol, prevRow = col, row
	}
}

// timeLabels places tick labels under their columns, falling back to the
// time of day when full labels would collide.
func timeLabels(tt []ticks.TimeTick, p projector) string {
	type placed struct {
		col   int
		label string
	}
	visible := make([]placed, 0, len(tt))
	for _, t := range tt {
		if col, ok := p.col(t.X); ok {
			visible = append(visible, placed{col, t.Label})
		}
	}

	short := false
	for i := 1; i < len(visible); i++ {
		if visible[i].col-visible[i-1].col <= len(visible[i-1].label) {
			short = true
			break
		}
	}

	out := []rune(strings.Repeat(" ", p.cols))
	next := 0
	for _, v := range visible {
		label := v.label
		if short {
			if i := strings.LastIndexByte(label, ' '); i >= 0 {
				label = label[i+1:]
			}
		}
		if v.col < next || v.col+len(label) > p.cols {
			continue
		}
		copy(out[v.col:], []rune(label))
		next = v.col + len(label) + 1
	}
	return strings.TrimRight(string(out), " ")
}

// projector maps chart pixels onto canvas cells.
type projector struct {
	xOffset       float64
	width, height int
	cols, rows    int
}

func (p projector) colf(x int) float64 {
	return (float64(x) - p.xOffset) * float64(p.cols) / float64(p.width)
}

func (p projector) col(x int) (int, bool) {
	rel := float64(x) - p.xOffset
	if rel < 0 || rel >= float64(p.width) {
		return 0, false
	}
	return int(rel * float64(p.cols) / float64(p.width)), true
}

func (p projector) row(y int) int {
	r := y * p.rows / p.height
	return min(max(r, 0), p.rows-1)
}

type cell struct {
	r     rune
	color string
}

type canvas struct {
	cols, rows int
	cells      [][]cell
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]cell, rows)
	for i := range cells {
		cells[i] = make([]cell, cols)
		for j := range cells[i] {
			cells[i][j].r = ' '
		}
	}
	return &canvas{cols: cols, rows: rows, cells: cells}
}

func (c *canvas) inside(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

func (c *canvas) set(col, row int, r rune, color string) {
	if c.inside(col, row) {
		c.cells[row][col] = cell{r: r, color: color}
	}
}

// grid draws background lines without covering series markers.
func (c *canvas) grid(col, row int, r rune) {
	if !c.inside(col, row) {
		return
	}
	switch cur := c.cells[row][col].r; {
	case cur == ' ':
		c.cells[row][col].r = r
	case (cur == gridH && r == gridV) || (cur == gridV && r == gridH):
		c.cells[row][col].r = gridCross
	}
}

func (c *canvas) line(row int, color bool) string {
	var b strings.Builder
	for _, cl := range c.cells[row] {
		switch {
		case color && cl.color != "":
			b.WriteString(util.Colorize(cl.color, string(cl.r)))
		case color && cl.r != ' ':
			b.WriteString(util.FormatDim(string(cl.r)))
		default:
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}
