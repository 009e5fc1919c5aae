package access

import (
	"context"
	"time"
)

// countdownInterval is how often the display-only countdown fields are
// recomputed between reconciliations.
const countdownInterval = time.Minute

// runPoll is the safety net behind the realtime listener: every poll
// interval each live controller re-reads its source rows, so a missed
// pub/sub event is corrected within one cycle.
func (m *Manager) runPoll() {
	defer m.done.Done()

	if m.pollInterval <= 0 {
		return
	}

	t := time.NewTicker(m.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			for _, c := range m.snapshot() {
				c.Refresh(context.Background())
			}
		}
	}
}

// runCountdown keeps HoursLeft and the expiring-soon warning fresh without
// touching the database.
func (m *Manager) runCountdown() {
	defer m.done.Done()

	t := time.NewTicker(countdownInterval)
	defer t.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			now := m.clock()
			for _, c := range m.snapshot() {
				c.RefreshPresentation(now)
			}
		}
	}
}
