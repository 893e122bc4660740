package plot

import (
	"sync"
	"time"

	"github.com/penwyp/go-timeplot/internal/core/model"
)

// StateManager manages application state in a thread-safe manner
type StateManager struct {
	mu sync.RWMutex

	// Loading state
	isLoading      bool
	loadingMessage string

	// Interaction state
	interactionState model.InteractionState

	// Render bookkeeping
	renderedVersion uint64
	rendered        bool

	// Metadata
	lastDataUpdate time.Time
	filesLoaded    int
	rowsLoaded     int
}

// NewStateManager creates a new StateManager instance
func NewStateManager() *StateManager {
	return &StateManager{}
}

// GetLoadingState returns current loading state and message
func (sm *StateManager) GetLoadingState() (bool, string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.isLoading, sm.loadingMessage
}

// SetLoadingState updates loading state and message
func (sm *StateManager) SetLoadingState(isLoading bool, message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.isLoading = isLoading
	sm.loadingMessage = message
	sm.rendered = false
}

// GetInteractionState returns current interaction state with the loading
// fields filled in.
func (sm *StateManager) GetInteractionState() model.InteractionState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	state := sm.interactionState
	state.IsLoading = sm.isLoading
	state.LoadingMessage = sm.loadingMessage
	return state
}

// UpdateInteractionState updates specific fields of interaction state
func (sm *StateManager) UpdateInteractionState(updateFunc func(*model.InteractionState)) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	updateFunc(&sm.interactionState)
	sm.rendered = false
}

// NeedsRender reports whether the model version or the interaction state
// changed since the last frame.
func (sm *StateManager) NeedsRender(version uint64) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return !sm.rendered || sm.renderedVersion != version
}

// MarkRendered records the model version of the frame just drawn.
func (sm *StateManager) MarkRendered(version uint64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.renderedVersion = version
	sm.rendered = true
}

// Invalidate forces the next frame to be drawn.
func (sm *StateManager) Invalidate() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.rendered = false
}

// RecordLoad adds a successful load to the counters.
func (sm *StateManager) RecordLoad(stats LoadStats) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.filesLoaded += stats.Files
	sm.rowsLoaded += stats.Rows
	sm.lastDataUpdate = time.Now()
	sm.rendered = false
}

// LoadTotals returns the counters of all loads so far.
func (sm *StateManager) LoadTotals() (files, rows int, lastUpdate time.Time) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.filesLoaded, sm.rowsLoaded, sm.lastDataUpdate
}
