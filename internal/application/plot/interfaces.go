package plot

import (
	"context"

	"github.com/penwyp/go-timeplot/internal/core/model"
	"github.com/penwyp/go-timeplot/internal/data/watcher"
	"github.com/penwyp/go-timeplot/internal/presentation/display"
	"github.com/penwyp/go-timeplot/internal/presentation/interaction"
	"github.com/penwyp/go-timeplot/internal/presentation/layout"
)

// DataSource finds and loads row files
type DataSource interface {
	// ScanFiles lists the row files under the data directory
	ScanFiles() ([]string, error)
	// IdentifyChangedFiles returns files that have changed since last load
	IdentifyChangedFiles(files []string) []string
	// LoadFiles parses changed files and ingests their rows
	LoadFiles(ctx context.Context, files []string) (LoadStats, error)
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// SetSizer updates the screen size
	SetSizer(sizer *layout.Sizer)
	// RenderWithState renders a frame with the given interaction state
	RenderWithState(frame display.Frame, state model.InteractionState)
}

// StateStore manages application state
type StateStore interface {
	// GetLoadingState returns current loading state and message
	GetLoadingState() (bool, string)
	// SetLoadingState updates loading state and message
	SetLoadingState(isLoading bool, message string)
	// GetInteractionState returns current interaction state
	GetInteractionState() model.InteractionState
	// UpdateInteractionState applies fn to the interaction state
	UpdateInteractionState(fn func(*model.InteractionState))
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// FileMonitor watches for file changes
type FileMonitor interface {
	// Events returns a channel of file change events
	Events() <-chan model.FileEvent
	// Close stops monitoring and cleans up resources
	Close() error
}

var (
	_ DataSource        = (*DataLoader)(nil)
	_ DisplayController = (*display.TerminalDisplay)(nil)
	_ StateStore        = (*StateManager)(nil)
	_ InputHandler      = (*interaction.KeyboardReader)(nil)
	_ FileMonitor       = (*watcher.FileWatcher)(nil)
)
