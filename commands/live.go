package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penwyp/go-timeplot/internal/application/plot"
	"github.com/spf13/cobra"
)

var (
	// Refresh related flags
	liveRefreshRate      int
	liveRefreshPerSecond float64
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Show the chart in the terminal and follow new rows",
	Long: `Draws the chart in the terminal and keeps it current: row files that
appear or change under the data directory are merged as soon as they are
written, and the directory is rescanned periodically.

Keys:
  ←/→ h/l   pan one step        H/L        pan one page
  0/Home    scroll to start     $/End      scroll to end
  r         refresh             p          pause
  x         clear the store     ?          help
  q/Esc     quit`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().IntVar(&liveRefreshRate, "refresh-rate", 10,
		"Directory rescan interval in seconds")
	liveCmd.Flags().Float64Var(&liveRefreshPerSecond, "refresh-per-second", 2,
		"Display refresh rate (0.1-20 Hz)")
}

func runLive(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	// Validate refresh rate
	if liveRefreshRate <= 0 {
		return fmt.Errorf("refresh-rate must be positive")
	}

	config, err := buildConfig()
	if err != nil {
		return err
	}
	config.DataRefreshInterval = time.Duration(liveRefreshRate) * time.Second
	config.UIRefreshRate = liveRefreshPerSecond
	if err := config.Validate(); err != nil {
		return err
	}

	o, err := plot.NewOrchestrator(config)
	if err != nil {
		return err
	}
	defer o.Close()

	if err := applySeriesSettings(o.Model(), seriesSettings); err != nil {
		return err
	}
	if err := applyScroll(o.Model(), scroll); err != nil {
		return err
	}

	// Set up signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return o.Run(ctx)
}
