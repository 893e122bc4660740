// Package plot runs the chart as an application: it loads row files into the
// chart model, keeps them in the store and drives the live terminal view.
package plot

import (
	"fmt"
	"slices"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/penwyp/go-timeplot/internal/util"
)

const (
	DefaultCacheDir            = "~/.go-timeplot/store"
	DefaultDataRefreshInterval = 10 * time.Second
	DefaultUIRefreshRate       = 2.0
	DefaultConcurrency         = 4
)

// Config contains configuration for loading and showing a chart
type Config struct {
	// Data directories
	DataDir  string
	CacheDir string

	// Retention interval rows are written to and hydrated from
	Interval string

	Chart chart.Config

	// Refresh settings
	DataRefreshInterval time.Duration
	UIRefreshRate       float64 // frames per second

	// Performance settings
	Concurrency int
}

// Validate fills defaults, expands paths and checks the chart configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		c.DataDir = "."
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	c.DataDir = util.ExpandPath(c.DataDir)
	c.CacheDir = util.ExpandPath(c.CacheDir)

	if c.Interval == "" {
		c.Interval = model.Interval1Hour
	}
	if c.DataRefreshInterval == 0 {
		c.DataRefreshInterval = DefaultDataRefreshInterval
	}
	if c.UIRefreshRate == 0 {
		c.UIRefreshRate = DefaultUIRefreshRate
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}

	if c.UIRefreshRate < 0.1 || c.UIRefreshRate > 20 {
		return fmt.Errorf("%w: ui refresh rate %v must be between 0.1 and 20", model.ErrInvalidOption, c.UIRefreshRate)
	}
	if c.DataRefreshInterval < 0 {
		return fmt.Errorf("%w: data refresh interval %v", model.ErrInvalidOption, c.DataRefreshInterval)
	}
	if err := c.Chart.Validate(); err != nil {
		return err
	}
	if !slices.Contains(c.Chart.Intervals, c.Interval) {
		return fmt.Errorf("%w: %q", store.ErrUnknownInterval, c.Interval)
	}
	return nil
}

// uiTick is the frame period derived from UIRefreshRate.
func (c *Config) uiTick() time.Duration {
	return time.Duration(float64(time.Second) / c.UIRefreshRate)
}
