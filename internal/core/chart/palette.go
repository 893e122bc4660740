package chart

// SeriesPalette is Paul Tol's qualitative palette, readable with common
// forms of colour blindness. See https://personal.sron.nl/~pault/
var SeriesPalette = []string{
	"#4477AA", // blue
	"#EE6677", // rose
	"#228833", // green
	"#CCBB44", // olive
	"#66CCEE", // cyan
	"#AA3377", // purple
	"#BBBBBB", // grey
	"#EE8866", // orange
	"#44BB99", // teal
	"#FFAABB", // pink
}

// SeriesColor returns the palette colour for the i-th series, cycling.
func SeriesColor(i int) string {
	if i < 0 {
		i = -i
	}
	return SeriesPalette[i%len(SeriesPalette)]
}
