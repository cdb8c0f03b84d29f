package launcher

import "sync"

// Gate is the shared coordination state gating launches: at most one API
// call may be in flight process-wide, and launches are refused while the
// backend is updating a model. It is injected into whoever needs it instead
// of living in a package-level variable; the sequencer is the single writer
// of the in-progress flag, the update flag is written by the external
// coordinator that watches the backend.
type Gate struct {
	mu            sync.Mutex
	apiInProgress bool
	modelUpdating bool
}

func NewGate() *Gate { return &Gate{} }

// TryAcquire atomically checks both flags and sets the in-progress flag.
// It returns false, leaving the flags untouched, when either flag is set.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.apiInProgress || g.modelUpdating {
		return false
	}
	g.apiInProgress = true
	return true
}

// Release clears the in-progress flag after a terminal launch outcome.
func (g *Gate) Release() {
	g.mu.Lock()
	g.apiInProgress = false
	g.mu.Unlock()
}

func (g *Gate) APIInProgress() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.apiInProgress
}

// SetModelUpdating is called by the external coordinator; the sequencer only
// reads it.
func (g *Gate) SetModelUpdating(v bool) {
	g.mu.Lock()
	g.modelUpdating = v
	g.mu.Unlock()
}

func (g *Gate) ModelUpdating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modelUpdating
}
