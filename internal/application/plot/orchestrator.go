package plot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/chart"
	"github.com/penwyp/go-timeplot/internal/core/coord"
	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/core/viewport"
	"github.com/penwyp/go-timeplot/internal/data/store"
	"github.com/penwyp/go-timeplot/internal/data/watcher"
	"github.com/penwyp/go-timeplot/internal/presentation/display"
	"github.com/penwyp/go-timeplot/internal/presentation/interaction"
	"github.com/penwyp/go-timeplot/internal/presentation/layout"
	"github.com/penwyp/go-timeplot/internal/presentation/render"
	"github.com/penwyp/go-timeplot/internal/util"
)

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithDisplay replaces the terminal display.
func WithDisplay(d DisplayController) Option {
	return func(o *Orchestrator) { o.display = d }
}

// WithKeyboard replaces how the keyboard reader is opened.
func WithKeyboard(open func() (InputHandler, error)) Option {
	return func(o *Orchestrator) { o.openKeyboard = open }
}

// WithWatcher replaces how the data directory is watched.
func WithWatcher(open func(paths []string, match func(string) bool) (FileMonitor, error)) Option {
	return func(o *Orchestrator) { o.openWatcher = open }
}

// WithStore uses st instead of opening a FileStore under the cache
// directory. The caller keeps ownership of st.
func WithStore(st store.Store) Option {
	return func(o *Orchestrator) { o.store = st }
}

// WithSizer fixes the screen size instead of following the terminal.
func WithSizer(s *layout.Sizer) Option {
	return func(o *Orchestrator) {
		o.sizer = s
		o.followTerminal = false
	}
}

// Orchestrator coordinates all components of the live chart
type Orchestrator struct {
	config *Config

	// Core components
	model        *chart.Model
	store        store.Store
	ownsStore    bool
	dataLoader   *DataLoader
	hydrator     *Hydrator
	stateManager *StateManager

	// UI components
	display        DisplayController
	sizer          *layout.Sizer
	followTerminal bool
	color          bool
	openKeyboard   func() (InputHandler, error)
	keyboard       InputHandler

	// Monitoring
	openWatcher func(paths []string, match func(string) bool) (FileMonitor, error)
	watcher     FileMonitor

	closeOnce sync.Once
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(config *Config, opts ...Option) (*Orchestrator, error) {
	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m, err := chart.New(config.Chart, chart.WithAutoSeries())
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	o := &Orchestrator{
		config:         config,
		model:          m,
		stateManager:   NewStateManager(),
		followTerminal: true,
		color:          layout.IsTerminal(),
		openKeyboard: func() (InputHandler, error) {
			kr, err := interaction.NewKeyboardReader()
			if err != nil {
				return nil, err
			}
			return kr, nil
		},
		openWatcher: func(paths []string, match func(string) bool) (FileMonitor, error) {
			fw, err := watcher.NewFileWatcher(paths, match)
			if err != nil {
				return nil, err
			}
			return fw, nil
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.store == nil && config.Chart.CachingEnabled {
		fs, err := store.NewFileStore(config.CacheDir, config.Chart.Intervals)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		o.store = fs
		o.ownsStore = true
	}
	if o.store != nil && config.Chart.CachingEnabled {
		o.hydrator = NewHydrator(o.store, config.Interval)
	}
	o.dataLoader = NewDataLoader(config, m, o.store)

	if o.sizer == nil {
		o.sizer = layout.DetectSizer()
	}
	if o.display == nil {
		o.display = display.NewTerminalDisplay(nil, o.sizer)
	}
	return o, nil
}

// Model returns the chart model the orchestrator feeds.
func (o *Orchestrator) Model() *chart.Model {
	return o.model
}

// LoadAndBuild loads the stored rows and every row file once, without UI,
// and returns a snapshot of the chart.
func (o *Orchestrator) LoadAndBuild(ctx context.Context) (render.Snapshot, error) {
	if _, err := o.initialLoad(ctx); err != nil {
		return render.Snapshot{}, err
	}
	g, err := o.model.Geometry()
	if err != nil {
		return render.Snapshot{}, fmt.Errorf("failed to build chart: %w", err)
	}
	return render.Snapshot{Geometry: g, Table: o.model.Table()}, nil
}

// Import loads every row file once, persisting rows when caching is enabled.
func (o *Orchestrator) Import(ctx context.Context) (LoadStats, error) {
	return o.dataLoader.Preload(ctx)
}

// ClearStore removes every stored record.
func (o *Orchestrator) ClearStore() error {
	if o.store == nil {
		return fmt.Errorf("caching is disabled")
	}
	if err := o.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	util.LogInfo("Store cleared")
	return nil
}

// initialLoad hydrates the whole pannable domain from the store, then reads
// the row files on top of it.
func (o *Orchestrator) initialLoad(ctx context.Context) (LoadStats, error) {
	if fs, ok := o.store.(*store.FileStore); ok {
		if err := fs.Preload(ctx); err != nil {
			util.LogWarn(fmt.Sprintf("Failed to preload store: %v", err))
		}
	}
	if o.hydrator != nil {
		v := o.model.Viewport()
		t, err := o.hydrator.Hydrate(ctx, v.TimeOffset, v.TimeEnd())
		if err != nil {
			return LoadStats{}, fmt.Errorf("hydration failed: %w", err)
		}
		o.model.MergeTable(t)
		util.LogInfo(fmt.Sprintf("Hydrated %d rows from the %s interval", t.Len(), o.config.Interval))
	}

	stats, err := o.dataLoader.Preload(ctx)
	if err != nil {
		return stats, fmt.Errorf("preload failed: %w", err)
	}
	o.stateManager.RecordLoad(stats)
	return stats, nil
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting go-timeplot live view...")

	// Ensure cleanup on exit
	defer o.Close()

	// Phase 1: Initialize keyboard
	keyboard, err := o.openKeyboard()
	if err != nil {
		return fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	o.keyboard = keyboard
	defer o.keyboard.Close()

	// Enter alternate screen mode
	o.display.SetSizer(o.sizer)
	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	o.stateManager.SetLoadingState(true, "Loading data...")
	o.updateDisplay()

	// Phase 2: Load stored rows and row files
	if _, err := o.initialLoad(ctx); err != nil {
		return err
	}
	o.stateManager.SetLoadingState(false, "")

	// Phase 3: Start file monitoring
	if err := o.startWatcher(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	// Phase 4: Main event loop
	uiTicker := time.NewTicker(o.config.uiTick())
	defer uiTicker.Stop()

	dataTicker := time.NewTicker(o.config.DataRefreshInterval)
	defer dataTicker.Stop()

	o.updateDisplay()

	fileEvents := o.watcher.Events()
	keyEvents := o.keyboard.Events()
	var hydrated <-chan HydrateResult
	if o.hydrator != nil {
		hydrated = o.hydrator.Results()
	}

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down go-timeplot live view...")
			return nil

		case <-uiTicker.C:
			o.followTerminalSize()
			state := o.stateManager.GetInteractionState()
			if !state.IsPaused && o.stateManager.NeedsRender(o.model.Version()) {
				o.updateDisplay()
			}

		case <-dataTicker.C:
			state := o.stateManager.GetInteractionState()
			if !state.IsPaused || state.ForceRefresh {
				o.refreshData(ctx)
				o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
					s.ForceRefresh = false
				})
			}

		case event, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			state := o.stateManager.GetInteractionState()
			if !state.IsPaused {
				o.handleFileChange(ctx, event)
			}

		case res := <-hydrated:
			o.applyHydration(res)

		case keyEvent, ok := <-keyEvents:
			if !ok {
				return nil
			}
			if o.handleKeyboard(ctx, keyEvent) {
				return nil // Exit requested
			}
			o.updateDisplay()
		}
	}
}

// updateDisplay updates the terminal display
func (o *Orchestrator) updateDisplay() {
	version := o.model.Version()
	state := o.stateManager.GetInteractionState()

	frame := display.Frame{Title: "go-timeplot - " + o.config.DataDir}
	if !state.IsLoading && !state.ShowHelp {
		g, err := o.model.Geometry()
		if err != nil {
			util.LogError(fmt.Sprintf("Failed to build chart: %v", err))
			frame.Chart = []string{"Chart unavailable: " + err.Error()}
		} else {
			frame.Chart = render.TextLines(g, o.sizer.TextOptions(2, o.color))
		}
		frame.Status = o.statusLine()
	}

	o.display.RenderWithState(frame, state)
	o.stateManager.MarkRendered(version)
}

// statusLine describes the visible window and the load counters.
func (o *Orchestrator) statusLine() string {
	v := o.model.Viewport()
	start := int64(coord.XToSeconds(v.XOffset, v))
	end := int64(coord.XToSeconds(v.XOffset+float64(v.WidthPx), v))
	files, rows, lastUpdate := o.stateManager.LoadTotals()

	parts := []string{
		fmt.Sprintf("%s - %s (%s)", util.FormatTickTime(start), util.FormatTickTime(end), util.FormatSpan(end-start)),
		fmt.Sprintf("offset %.0f/%.0fpx", v.XOffset, viewport.MaxOffset(v)),
		fmt.Sprintf("%s rows from %d files", util.FormatNumber(rows), files),
	}
	if !lastUpdate.IsZero() {
		parts = append(parts, "updated "+util.FormatDuration(time.Since(lastUpdate))+" ago")
	}
	parts = append(parts, "? help")
	return strings.Join(parts, " | ")
}

// refreshData rescans the data directory for files the watcher missed
func (o *Orchestrator) refreshData(ctx context.Context) {
	stats, err := o.dataLoader.Preload(ctx)
	if err != nil {
		util.LogError(fmt.Sprintf("Failed to refresh data: %v", err))
		o.setStatus("refresh failed: " + err.Error())
		return
	}
	if stats.Files > 0 || stats.Failed > 0 {
		o.stateManager.RecordLoad(stats)
	}
}

// requestHydration reloads the visible window from the store. Only the
// newest request's rows are applied.
func (o *Orchestrator) requestHydration(ctx context.Context) {
	if o.hydrator == nil {
		return
	}
	v := o.model.Viewport()
	start := int64(coord.XToSeconds(v.XOffset, v))
	end := int64(coord.XToSeconds(v.XOffset+float64(v.WidthPx), v))
	o.hydrator.Request(ctx, start, end)
}

// applyHydration merges a hydration result unless a newer request superseded it.
func (o *Orchestrator) applyHydration(res HydrateResult) {
	if !o.hydrator.Accept(res) {
		return
	}
	if res.Err != nil {
		util.LogWarn(fmt.Sprintf("Hydration of %d..%d failed: %v", res.Start, res.End, res.Err))
		o.setStatus("hydration failed")
		return
	}
	if res.Table != nil && res.Table.Len() > 0 {
		o.model.MergeTable(res.Table)
	}
}

// handleKeyboard handles keyboard events and reports whether to exit
func (o *Orchestrator) handleKeyboard(ctx context.Context, event interaction.KeyEvent) bool {
	action := interaction.ActionFor(event)
	state := o.stateManager.GetInteractionState()
	ctrl := o.model.Controller()

	if action != interaction.ActionNone {
		o.setStatus("")
	}

	switch action {
	case interaction.ActionQuit:
		// Escape closes the help screen before it quits
		if event.Type == interaction.KeyEscape && state.ShowHelp {
			o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
				s.ShowHelp = false
			})
			return false
		}
		return true
	case interaction.ActionPanLeft:
		o.panned(ctx, ctrl.Step(viewport.Left))
	case interaction.ActionPanRight:
		o.panned(ctx, ctrl.Step(viewport.Right))
	case interaction.ActionPageLeft:
		o.panned(ctx, ctrl.Pan(-float64(ctrl.State().WidthPx)))
	case interaction.ActionPageRight:
		o.panned(ctx, ctrl.Pan(float64(ctrl.State().WidthPx)))
	case interaction.ActionHome:
		o.panned(ctx, ctrl.Reset())
	case interaction.ActionEnd:
		o.panned(ctx, ctrl.End())
	case interaction.ActionRefresh:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ForceRefresh = true
		})
		o.refreshData(ctx)
		o.requestHydration(ctx)
	case interaction.ActionTogglePause:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.IsPaused = !s.IsPaused
		})
	case interaction.ActionToggleHelp:
		o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
			s.ShowHelp = !s.ShowHelp
		})
	case interaction.ActionClearStore:
		if err := o.ClearStore(); err != nil {
			o.setStatus(err.Error())
		} else {
			o.setStatus("store cleared")
		}
	}
	return false
}

func (o *Orchestrator) panned(ctx context.Context, moved bool) {
	if moved {
		o.requestHydration(ctx)
	}
}

func (o *Orchestrator) setStatus(msg string) {
	o.stateManager.UpdateInteractionState(func(s *model.InteractionState) {
		s.StatusMessage = msg
	})
}

// followTerminalSize picks up terminal resizes
func (o *Orchestrator) followTerminalSize() {
	if !o.followTerminal {
		return
	}
	s := layout.DetectSizer()
	if s.Width == o.sizer.Width && s.Height == o.sizer.Height {
		return
	}
	o.sizer = s
	o.display.SetSizer(s)
	o.stateManager.Invalidate()
}

// startWatcher initializes the file watcher
func (o *Orchestrator) startWatcher() error {
	w, err := o.openWatcher([]string{o.config.DataDir}, o.dataLoader.Matches)
	if err != nil {
		return err
	}
	o.watcher = w
	return nil
}

// handleFileChange handles file change events
func (o *Orchestrator) handleFileChange(ctx context.Context, event model.FileEvent) {
	util.LogDebug(fmt.Sprintf("File changed: %s (%s)", event.Path, event.Operation))

	if strings.Contains(event.Operation, "REMOVE") || strings.Contains(event.Operation, "RENAME") {
		// Rows already charted stay; the file is re-read if it comes back.
		o.dataLoader.Forget(event.Path)
		return
	}

	stats, err := o.dataLoader.LoadFiles(ctx, []string{event.Path})
	if err != nil {
		util.LogError(fmt.Sprintf("Failed to handle file change: %v", err))
		o.setStatus("load failed: " + err.Error())
		return
	}
	o.stateManager.RecordLoad(stats)
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	var firstErr error
	o.closeOnce.Do(func() {
		if o.hydrator != nil {
			o.hydrator.Close()
		}

		// Close file watcher
		if o.watcher != nil {
			if err := o.watcher.Close(); err != nil {
				firstErr = fmt.Errorf("failed to close file watcher: %w", err)
			}
		}

		if o.ownsStore {
			if err := o.store.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("failed to close store: %w", err)
			}
		}
	})
	return firstErr
}
