package commands

import (
	"fmt"

	"github.com/penwyp/go-timeplot/internal/application/plot"
	"github.com/penwyp/go-timeplot/internal/util"
	"github.com/spf13/cobra"
)

var importReset bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy row files into the persistent store",
	Long: `Reads every row file under the data directory and writes its rows into
the store under the chosen retention interval, so later charts can be
hydrated from the store even after the files are gone.

Caching is always enabled for this command.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVarP(&importReset, "reset", "r", false,
		"Clear the store before importing")
}

func runImport(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	config, err := buildConfig()
	if err != nil {
		return err
	}
	config.Chart.CachingEnabled = true

	o, err := plot.NewOrchestrator(config)
	if err != nil {
		return err
	}
	defer o.Close()

	// Clear store if needed
	if importReset {
		if err := o.ClearStore(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Store cleared")
	}

	stats, err := o.Import(cmd.Context())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), importSummary(config, stats))
	return nil
}

func importSummary(config *plot.Config, stats plot.LoadStats) string {
	summary := fmt.Sprintf("Imported %s rows from %d files into %s (%s)",
		util.FormatNumber(stats.Rows), stats.Files, config.CacheDir, config.Interval)
	if stats.Failed > 0 {
		summary += fmt.Sprintf(", %d files failed", stats.Failed)
	}
	if stats.Skipped > 0 {
		summary += fmt.Sprintf(", %d lines skipped", stats.Skipped)
	}
	return summary
}
