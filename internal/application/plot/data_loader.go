package plot

import (
	"context"
	"fmt"
	"sort"

	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/table"
	"github.com/penwyp/go-timeplot/internal/data/parser"
	"github.com/penwyp/go-timeplot/internal/data/scanner"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/penwyp/go-timeplot/internal/util"
)

// LoadStats summarizes one LoadFiles call.
type LoadStats struct {
	Files   int // files parsed successfully
	Failed  int // files that could not be parsed
	Rows    int // rows ingested
	Skipped int // lines skipped inside parsed files
}

// DataLoader handles all data loading and persistence of rows
type DataLoader struct {
	config  *Config
	model   *chart.Model
	store   store.Store // nil when caching is disabled
	scanner *scanner.FileScanner
	parser  *parser.Parser
}

// NewDataLoader creates a DataLoader feeding m. st may be nil.
func NewDataLoader(config *Config, m *chart.Model, st store.Store) *DataLoader {
	return &DataLoader{
		config:  config,
		model:   m,
		store:   st,
		scanner: scanner.NewFileScanner(config.DataDir),
		parser:  parser.NewParser(config.Concurrency),
	}
}

// ScanFiles lists the row files under the data directory
func (dl *DataLoader) ScanFiles() ([]string, error) {
	return dl.scanner.Scan()
}

// Matches reports whether path is a row file the loader would read.
func (dl *DataLoader) Matches(path string) bool {
	return dl.scanner.Matches(path)
}

// IdentifyChangedFiles returns files that are new or changed since they were
// last parsed.
func (dl *DataLoader) IdentifyChangedFiles(files []string) []string {
	var changed []string
	for _, f := range files {
		if dl.parser.Changed(f) {
			changed = append(changed, f)
		}
	}
	return changed
}

// Forget drops the parse cache of a removed file. Its rows stay in the chart.
func (dl *DataLoader) Forget(path string) {
	dl.parser.Forget(path)
}

// Preload scans the data directory and loads every file.
func (dl *DataLoader) Preload(ctx context.Context) (LoadStats, error) {
	files, err := dl.ScanFiles()
	if err != nil {
		return LoadStats{}, fmt.Errorf("failed to scan %s: %w", dl.config.DataDir, err)
	}
	util.LogInfo(fmt.Sprintf("Found %d files to process", len(files)))
	return dl.LoadFiles(ctx, files)
}

// LoadFiles parses the changed files among files and ingests their rows as one
// batch. Tables are merged in path order, so with overlapping timestamps the
// file that sorts last wins.
func (dl *DataLoader) LoadFiles(ctx context.Context, files []string) (LoadStats, error) {
	var stats LoadStats
	changed := dl.IdentifyChangedFiles(files)
	if len(changed) == 0 {
		return stats, nil
	}

	results := make([]parser.ParseResult, 0, len(changed))
	for res := range dl.parser.ParseFiles(changed) {
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	batch := table.Empty()
	for _, res := range results {
		if res.Error != nil {
			stats.Failed++
			util.LogWarn(fmt.Sprintf("Failed to load %s: %v", res.File, res.Error))
			continue
		}
		stats.Files++
		stats.Skipped += res.Skipped
		batch = table.Merge(batch, res.Table)
	}

	if err := dl.Ingest(ctx, batch); err != nil {
		// Parsed files are forgotten so the next pass retries them.
		for _, res := range results {
			dl.parser.Forget(res.File)
		}
		return stats, err
	}
	stats.Rows = batch.Len()
	util.LogInfo(fmt.Sprintf("Loaded %d files (%d failed): %d rows, %d skipped lines",
		stats.Files, stats.Failed, stats.Rows, stats.Skipped))
	return stats, nil
}

// Ingest persists t when caching is enabled and merges it into the chart
// only after the write succeeded. A failed write leaves the chart untouched.
func (dl *DataLoader) Ingest(ctx context.Context, t *table.Table) error {
	if t == nil || t.Len() == 0 {
		return nil
	}
	if dl.caching() {
		err := store.Await(ctx, dl.store.UpsertRange(ctx, dl.config.Interval, t.Records()))
		if err != nil {
			return fmt.Errorf("failed to persist %d rows: %w", t.Len(), err)
		}
	}
	dl.model.MergeTable(t)
	return nil
}

// IngestRows validates columns and rows as a table and ingests it.
func (dl *DataLoader) IngestRows(ctx context.Context, columns []string, rows [][]model.Value) error {
	t, err := table.New(columns, rows)
	if err != nil {
		return fmt.Errorf("ingest rows: %w", err)
	}
	return dl.Ingest(ctx, t)
}

func (dl *DataLoader) caching() bool {
	return dl.store != nil && dl.model.Config().CachingEnabled
}
