package access

import (
	"sync"
	"time"
)

// graceTimer owns at most one pending re-check callback. Arming replaces any
// pending timer; a replaced or cancelled timer never fires its callback even
// if the underlying time.Timer had already expired.
type graceTimer struct {
	mu      sync.Mutex
	pending *time.Timer
}

func (g *graceTimer) arm(delay time.Duration, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}

	if delay < 0 {
		delay = 0
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		g.mu.Lock()
		if g.pending != t {
			g.mu.Unlock()
			return
		}
		g.pending = nil
		g.mu.Unlock()
		fn()
	})
	g.pending = t
}

func (g *graceTimer) cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
}

func (g *graceTimer) armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}
