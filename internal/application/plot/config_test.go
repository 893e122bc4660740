package plot

import (
	"testing"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.NotEmpty(t, cfg.DataDir)
	assert.Contains(t, cfg.CacheDir, ".go-timeplot")
	assert.NotContains(t, cfg.CacheDir, "~")
	assert.Equal(t, model.Interval1Hour, cfg.Interval)
	assert.Equal(t, DefaultDataRefreshInterval, cfg.DataRefreshInterval)
	assert.Equal(t, DefaultUIRefreshRate, cfg.UIRefreshRate)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, model.DefaultIntervals(), cfg.Chart.Intervals)
	assert.Equal(t, 500*time.Millisecond, cfg.uiTick())
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"ui refresh too slow", func(c *Config) { c.UIRefreshRate = 0.01 }, model.ErrInvalidOption},
		{"ui refresh too fast", func(c *Config) { c.UIRefreshRate = 50 }, model.ErrInvalidOption},
		{"negative data refresh", func(c *Config) { c.DataRefreshInterval = -time.Second }, model.ErrInvalidOption},
		{"invalid chart", func(c *Config) { c.Chart.SecondsPerPixel = -1 }, model.ErrInvalidOption},
		{"unknown interval", func(c *Config) { c.Interval = "5min" }, store.ErrUnknownInterval},
		{"interval not configured", func(c *Config) {
			c.Chart.Intervals = []string{model.Interval10Min}
			c.Interval = model.Interval1Hour
		}, store.ErrUnknownInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, false)
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}
