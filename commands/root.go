package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/penwyp/go-timeplot/internal/application/plot"
	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/presentation/layout"
	"github.com/penwyp/go-timeplot/internal/presentation/render"
	"github.com/penwyp/go-timeplot/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug bool

	// Data paths
	dataDir  string
	cacheDir string

	// Chart related
	from           string
	span           string
	caching        bool
	interval       string
	chartSettings  []string
	seriesSettings []string
	scroll         string

	// Output related
	outputFormat string
	outputFile   string
	textCols     int
	textRows     int

	rootCmd = &cobra.Command{
		Use:   "go-timeplot [flags]",
		Short: "Pannable time-series charts from row files",
		Long: `go-timeplot charts time-series rows read from CSV and JSONL files.

Every file under the data directory contributes rows keyed by their Time
column; rows from different files are merged on Time. The chart covers a
time window and is rendered as SVG, terminal text or JSON geometry, or the
merged rows are exported as CSV or JSONL.

Examples:
  go-timeplot --dir ./metrics                          # SVG of the last day to stdout
  go-timeplot --dir ./metrics -f text                  # Draw the chart in the terminal
  go-timeplot --from 2024-05-01T00:00:00Z --span 7d    # Chart one week
  go-timeplot --set seconds_per_pixel=300 -o week.svg  # Zoom out and write a file
  go-timeplot --series Temp.type=bar --series Temp.unit=°C
  go-timeplot -f csv -o merged.csv                     # Export the merged rows
  go-timeplot live --dir ./metrics                     # Interactive chart that follows new rows`,
		RunE: runRender,
	}
)

const (
	defaultCacheDir = plot.DefaultCacheDir
	defaultDataDir  = "."
)

func init() {
	// Input data configuration
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaultDataDir,
		"Directory with CSV and JSONL row files")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", defaultCacheDir,
		"Directory of the persistent row store")

	// Chart configuration
	rootCmd.PersistentFlags().StringVar(&from, "from", "",
		"Left edge of the chart (epoch seconds or RFC3339, default: now minus span)")
	rootCmd.PersistentFlags().StringVar(&span, "span", "24h",
		"Time span covered by the chart (e.g., 90min, 12h, 7d, 2w)")
	rootCmd.PersistentFlags().BoolVar(&caching, "caching", false,
		"Persist rows in the store and hydrate the chart from it")
	rootCmd.PersistentFlags().StringVar(&interval, "interval", "1hour",
		"Retention interval rows are stored in")
	rootCmd.PersistentFlags().StringArrayVar(&chartSettings, "set", nil,
		"Chart option as key=value (repeatable, e.g., seconds_per_pixel=120)")
	rootCmd.PersistentFlags().StringArrayVar(&seriesSettings, "series", nil,
		"Series property as id.key=value (repeatable, e.g., Temp.color=#ff0000)")
	rootCmd.PersistentFlags().StringVar(&scroll, "scroll", "start",
		"Initial scroll position (start, end or pixels)")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", string(render.FormatSVG),
		"Output format (svg, text, json, csv, jsonl)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "-",
		"Output file (- for stdout)")
	rootCmd.Flags().IntVar(&textCols, "cols", 0,
		"Text output width in columns (0 = terminal width)")
	rootCmd.Flags().IntVar(&textRows, "rows", 0,
		"Text output height in rows (0 = terminal height)")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

// renderOptions describes one rendered output.
type renderOptions struct {
	Format render.Format
	Scroll string
	Series []string
	Text   render.TextOptions
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	format, err := render.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	config, err := buildConfig()
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	opts := renderOptions{
		Format: format,
		Scroll: scroll,
		Series: seriesSettings,
		Text:   textOptions(outputFile, textCols, textRows),
	}
	return renderChart(cmd.Context(), config, opts, out)
}

// renderChart loads every row file once and writes the chart to w.
func renderChart(ctx context.Context, config *plot.Config, opts renderOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	o, err := plot.NewOrchestrator(config)
	if err != nil {
		return err
	}
	defer o.Close()

	if err := applySeriesSettings(o.Model(), opts.Series); err != nil {
		return err
	}
	if err := applyScroll(o.Model(), opts.Scroll); err != nil {
		return err
	}

	snap, err := o.LoadAndBuild(ctx)
	if err != nil {
		return err
	}
	snap.Text = opts.Text
	return render.Write(w, opts.Format, snap)
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func initLogging() error {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	return util.InitLogger(util.LoggerOptions{
		Level:          logLevel,
		File:           util.DefaultLogFile(),
		DebugToConsole: debug,
	})
}

// buildConfig turns the persistent flags into a validated plot configuration.
func buildConfig() (*plot.Config, error) {
	chartConfig := chart.DefaultConfig()
	chartConfig.CachingEnabled = caching

	if err := chartConfig.Set(chart.OptTimeLength, span); err != nil {
		return nil, fmt.Errorf("invalid --span: %w", err)
	}
	if from != "" {
		if err := chartConfig.Set(chart.OptTimeOffset, from); err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
	} else {
		chartConfig.TimeOffset = util.Now().Unix() - chartConfig.TimeLength
	}

	settings, err := parseAssignments(chartSettings)
	if err != nil {
		return nil, fmt.Errorf("invalid --set: %w", err)
	}
	for _, kv := range settings {
		if err := chartConfig.Set(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	config := &plot.Config{
		DataDir:     dataDir,
		CacheDir:    cacheDir,
		Interval:    interval,
		Chart:       chartConfig,
		Concurrency: runtime.NumCPU(),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// parseAssignments splits "key=value" arguments, keeping their order.
func parseAssignments(args []string) ([][2]string, error) {
	out := make([][2]string, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not key=value", arg)
		}
		out = append(out, [2]string{key, value})
	}
	return out, nil
}

// applySeriesSettings registers the named series and sets their properties.
func applySeriesSettings(m *chart.Model, args []string) error {
	settings, err := parseAssignments(args)
	if err != nil {
		return fmt.Errorf("invalid --series: %w", err)
	}
	for _, kv := range settings {
		id, key, ok := strings.Cut(kv[0], ".")
		if !ok || id == "" {
			return fmt.Errorf("invalid --series: %q is not id.key=value", kv[0]+"="+kv[1])
		}
		if !hasSeries(m, id) {
			if err := m.AddSeries(id); err != nil {
				return err
			}
		}
		if err := m.SetSeriesProperty(id, key, kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func hasSeries(m *chart.Model, id string) bool {
	for _, s := range m.Series() {
		if s.ID == id {
			return true
		}
	}
	return false
}

// applyScroll moves the viewport to "start", "end" or a pixel offset.
func applyScroll(m *chart.Model, pos string) error {
	ctrl := m.Controller()
	switch pos {
	case "", "start":
		ctrl.Reset()
	case "end":
		ctrl.End()
	default:
		var px float64
		if _, err := fmt.Sscanf(pos, "%g", &px); err != nil {
			return fmt.Errorf("invalid --scroll %q: want start, end or pixels", pos)
		}
		ctrl.Pan(px - ctrl.State().XOffset)
	}
	return nil
}

// textOptions sizes text output to the flags, or to the terminal when the
// chart goes to stdout.
func textOptions(output string, cols, rows int) render.TextOptions {
	toTerminal := output == "-" && layout.IsTerminal()
	sizer := layout.NewSizer(layout.DefaultCols, layout.DefaultRows)
	if toTerminal {
		sizer = layout.DetectSizer()
	}
	if cols > 0 {
		sizer.Width = cols
	}
	if rows > 0 {
		sizer.Height = rows
	}
	return sizer.TextOptions(0, toTerminal)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(util.ExpandPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			util.LogError(fmt.Sprintf("Failed to close %s: %v", path, err))
		}
	}, nil
}
