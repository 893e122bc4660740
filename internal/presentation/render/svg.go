package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/model"
)

const (
	svgBackground = "#ffffff"
	svgGrid       = "#dddddd"
	svgTimeLabel  = "#555555"
	axisGapPx     = 6
	axisMarginPx  = 2
)

// SVG writes g as a standalone SVG document. Domain content is shifted left
// by the viewport offset and clipped to the visible window.
func SVG(w io.Writer, g chart.Geometry) error {
	var b strings.Builder
	font := fmtFloat(g.FontPx)

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="%s">`+"\n",
		g.Width, g.Height, g.Width, g.Height, font)
	fmt.Fprintf(&b, `<defs><clipPath id="viewport"><rect width="%d" height="%d"/></clipPath></defs>`+"\n", g.Width, g.Height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`+"\n", g.Width, g.Height, svgBackground)

	for _, y := range g.GridLines {
		fmt.Fprintf(&b, `<line x1="0" y1="%d" x2="%d" y2="%d" stroke="%s"/>`+"\n", y, g.Width, y, svgGrid)
	}

	shift := -g.Viewport.XOffset
	if shift == 0 {
		shift = 0 // no "-0"
	}
	b.WriteString(`<g clip-path="url(#viewport)">` + "\n")
	fmt.Fprintf(&b, `<g transform="translate(%s,0)">`+"\n", fmtFloat(shift))
	for _, tt := range g.TimeTicks {
		fmt.Fprintf(&b, `<line x1="%d" y1="0" x2="%d" y2="%d" stroke="%s"/>`+"\n", tt.X, tt.X, g.Height, svgGrid)
		fmt.Fprintf(&b, `<text x="%d" y="%d" fill="%s">%s</text>`+"\n", tt.X+2, g.Height-2, svgTimeLabel, html.EscapeString(tt.Label))
	}
	for _, s := range g.Series {
		writeSeriesPath(&b, s, g.Height)
	}
	b.WriteString("</g>\n</g>\n")

	writeValueAxes(&b, g)
	b.WriteString("</svg>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSeriesPath(b *strings.Builder, s chart.SeriesGeometry, height int) {
	if len(s.Points) == 0 {
		return
	}
	color := html.EscapeString(s.Color)
	id := html.EscapeString(s.ID)

	if s.Type == model.DisplayBar {
		width := barWidth(s.Points)
		fmt.Fprintf(b, `<g data-series="%s" fill="%s">`+"\n", id, color)
		for _, p := range s.Points {
			fmt.Fprintf(b, `<rect x="%d" y="%d" width="%d" height="%d"/>`+"\n", p.X, p.Y, width, max(0, height-p.Y))
		}
		b.WriteString("</g>\n")
		return
	}

	coords := make([]string, len(s.Points))
	for i, p := range s.Points {
		coords[i] = strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
	}
	fmt.Fprintf(b, `<polyline data-series="%s" fill="none" stroke="%s" points="%s"/>`+"\n", id, color, strings.Join(coords, " "))
}

// barWidth leaves a one pixel gap at the tightest point spacing.
func barWidth(points []chart.Point) int {
	gap := 0
	for i := 1; i < len(points); i++ {
		d := points[i].X - points[i-1].X
		if d > 0 && (gap == 0 || d < gap) {
			gap = d
		}
	}
	if gap <= 1 {
		return 1
	}
	return gap - 1
}

// writeValueAxes places one labelled axis per series, alternating between
// the left and right edges and stacking inward. An axis that would overlap
// one already placed is left out.
func writeValueAxes(b *strings.Builder, g chart.Geometry) {
	left := float64(axisMarginPx)
	right := float64(g.Width - axisMarginPx)
	side := 0
	for _, s := range g.Series {
		if len(s.Axis.Ticks) == 0 && !s.HasData {
			continue
		}
		title := s.Name
		if s.Unit != "" {
			title += " (" + s.Unit + ")"
		}
		widest := runewidth.StringWidth(title)
		for _, t := range s.Axis.Ticks {
			widest = max(widest, runewidth.StringWidth(t.Label))
		}
		// Approximate glyph advance of 0.6em.
		width := float64(widest) * g.FontPx * 0.6
		if left+width > right {
			break
		}

		x, anchor := left, "start"
		if side%2 == 1 {
			x, anchor = right, "end"
			right -= width + axisGapPx
		} else {
			left += width + axisGapPx
		}
		side++

		xs := fmtFloat(math.Round(x))
		fmt.Fprintf(b, `<g data-axis="%s" fill="%s" text-anchor="%s">`+"\n", html.EscapeString(s.ID), html.EscapeString(s.Color), anchor)
		fmt.Fprintf(b, `<text x="%s" y="%s">%s</text>`+"\n", xs, fmtFloat(g.FontPx), html.EscapeString(title))
		for _, t := range s.Axis.Ticks {
			fmt.Fprintf(b, `<text x="%s" y="%d">%s</text>`+"\n", xs, t.Y, html.EscapeString(t.Label))
		}
		b.WriteString("</g>\n")
	}
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
