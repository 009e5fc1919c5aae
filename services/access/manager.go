package access

import (
	"context"
	"sync"
	"time"

	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/subscription"
)

// Manager keeps one Controller per business and drives the shared background
// triggers: the fallback poll and the countdown ticker. Controllers are
// created lazily on first use and torn down with Drop.
type Manager struct {
	ents         EntitlementSource
	subs         SubscriptionSource
	clock        func() time.Time
	pollInterval time.Duration
	fetchTimeout time.Duration

	mu          sync.Mutex
	controllers map[string]*Controller

	stopOnce sync.Once
	stop     chan struct{}
	done     sync.WaitGroup
}

func NewManager(cfg *config.Config, ents *entitlement.Repository, subs *subscription.Repository) *Manager {
	return &Manager{
		ents:         ents,
		subs:         subs,
		clock:        time.Now,
		pollInterval: cfg.Access.PollInterval,
		fetchTimeout: cfg.Access.FetchTimeout,
		controllers:  map[string]*Controller{},
		stop:         make(chan struct{}),
	}
}

// Acquire returns the business's controller, creating it on first use. The
// first acquisition runs a synchronous reconciliation so the caller never
// sees the zero decision.
func (m *Manager) Acquire(ctx context.Context, businessID string) *Controller {
	m.mu.Lock()
	c, ok := m.controllers[businessID]
	if !ok {
		c = NewController(businessID, m.ents, m.subs,
			WithClock(m.clock),
			WithFetchTimeout(m.fetchTimeout),
		)
		m.controllers[businessID] = c
		controllersActive.Set(float64(len(m.controllers)))
	}
	m.mu.Unlock()

	if !c.HasDecision() {
		c.Refresh(ctx)
	}
	return c
}

// Drop closes and forgets the business's controller. Used when the business
// is deleted or its last session ends.
func (m *Manager) Drop(businessID string) {
	m.mu.Lock()
	c, ok := m.controllers[businessID]
	if ok {
		delete(m.controllers, businessID)
		controllersActive.Set(float64(len(m.controllers)))
	}
	m.mu.Unlock()

	if ok {
		c.Close()
	}
}

// NotifyChange refreshes the business's controller in response to a realtime
// change event. A business with no live controller has nothing to refresh.
func (m *Manager) NotifyChange(ctx context.Context, businessID string) {
	m.mu.Lock()
	c, ok := m.controllers[businessID]
	m.mu.Unlock()

	if ok {
		c.Refresh(ctx)
	}
}

func (m *Manager) snapshot() []*Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		out = append(out, c)
	}
	return out
}

// Start launches the fallback poll and the countdown ticker.
func (m *Manager) Start() {
	m.done.Add(2)
	go m.runPoll()
	go m.runCountdown()
}

// Close stops the background loops and tears down every controller.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.done.Wait()

	m.mu.Lock()
	controllers := m.controllers
	m.controllers = map[string]*Controller{}
	controllersActive.Set(0)
	m.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
