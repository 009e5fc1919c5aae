package access

import (
	"context"
	"sync"
	"time"

	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/subscription"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// graceBuffer is added to the grace-expiry re-check so the timer fires just
// after the window closes, never just before.
const graceBuffer = 1500 * time.Millisecond

const defaultFetchTimeout = 15 * time.Second

// EntitlementSource yields the newest non-revoked entitlement row, nil when
// none exists.
type EntitlementSource interface {
	ActiveForBusiness(ctx context.Context, businessID string) (*entitlement.Entitlement, error)
}

// SubscriptionSource yields the business's subscription row, nil when none
// exists.
type SubscriptionSource interface {
	ForBusiness(ctx context.Context, businessID string) (*subscription.Subscription, error)
}

// Controller reconciles the two source rows into one published Decision for
// a single business. It owns the grace re-check timer and guarantees that
// overlapping refresh triggers collapse into at most one follow-up run and
// that a superseded reconciliation never overwrites a newer result.
type Controller struct {
	businessID   string
	ents         EntitlementSource
	subs         SubscriptionSource
	clock        func() time.Time
	fetchTimeout time.Duration

	mu          sync.Mutex
	decision    Decision
	hasDecision bool
	inflight    bool
	pending     bool
	gen         uint64
	closed      bool
	subscribers map[int]chan Decision
	nextSubID   int

	timer graceTimer
}

type ControllerOption func(*Controller)

func WithClock(clock func() time.Time) ControllerOption {
	return func(c *Controller) { c.clock = clock }
}

func WithFetchTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func NewController(businessID string, ents EntitlementSource, subs SubscriptionSource, opts ...ControllerOption) *Controller {
	c := &Controller{
		businessID:   businessID,
		ents:         ents,
		subs:         subs,
		clock:        time.Now,
		fetchTimeout: defaultFetchTimeout,
		decision:     Unknown(),
		subscribers:  map[int]chan Decision{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decision returns the currently published decision.
func (c *Controller) Decision() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decision
}

// HasDecision reports whether at least one reconciliation has published.
func (c *Controller) HasDecision() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasDecision
}

// Subscribe registers a decision listener. The returned func detaches it.
// Slow consumers drop updates instead of blocking the controller.
func (c *Controller) Subscribe() (<-chan Decision, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan Decision, 1)
	c.subscribers[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Refresh is the single re-entrant-safe entry point shared by realtime
// notifications, the fallback poll, grace-timer callbacks, and manual
// refresh. A trigger arriving while a run is in flight schedules exactly
// one follow-up run rather than queuing.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.inflight {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.inflight = true
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.reconcile(ctx, gen)

	c.mu.Lock()
	c.inflight = false
	rerun := c.pending && !c.closed
	c.pending = false
	c.mu.Unlock()

	if rerun {
		c.Refresh(ctx)
	}
}

// Close cancels the grace timer and detaches the controller. Used when the
// business context goes away (logout, account switch); any in-flight
// reconciliation result is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	for id, ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, id)
	}
	c.mu.Unlock()

	c.timer.cancel()
}

func (c *Controller) reconcile(ctx context.Context, gen uint64) {
	reconcileTotal.Inc()

	if c.businessID == "" {
		c.publish(gen, Unknown())
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	// Both rows are fetched as a joined pair under one deadline; a decision
	// is never computed from half a fetch.
	var ent *entitlement.Entitlement
	var sub *subscription.Subscription

	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		ent, err = c.ents.ActiveForBusiness(gctx, c.businessID)
		return err
	})
	g.Go(func() error {
		var err error
		sub, err = c.subs.ForBusiness(gctx, c.businessID)
		return err
	})

	if err := g.Wait(); err != nil {
		// Fail closed: a transient fetch failure keeps the last published
		// decision instead of resetting to the permissive default, so an
		// expired business cannot unlock itself via a network blip.
		reconcileFailures.Inc()
		zap.L().Warn("access reconciliation fetch failed, keeping last decision",
			zap.String("business_id", c.businessID),
			zap.Error(err),
		)
		return
	}

	now := c.clock()

	var entDecision *Decision
	if ent != nil {
		d := Evaluate(Input{Entitlement: ent}, now)
		entDecision = &d
	}
	subDecision := Evaluate(Input{Subscription: sub}, now)

	c.publish(gen, resolve(ent, entDecision, subDecision))
}

// resolve applies the cross-source precedence:
//  1. a lifetime entitlement always wins,
//  2. an active paid/trial subscription beats any lesser entitlement, so a
//     fresh real payment supersedes a stale gift or grace override,
//  3. otherwise a present entitlement drives (gift/grace/expired),
//  4. otherwise the subscription decision stands.
func resolve(ent *entitlement.Entitlement, entDecision *Decision, subDecision Decision) Decision {
	if ent != nil && ent.Kind.Normalized() == entitlement.KindLifetime {
		return *entDecision
	}
	if subDecision.Status == StatusPaid || subDecision.Status == StatusTrial {
		return subDecision
	}
	if entDecision != nil {
		return *entDecision
	}
	return subDecision
}

func (c *Controller) publish(gen uint64, d Decision) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		// A newer reconciliation superseded this one; drop the stale result.
		c.mu.Unlock()
		return
	}

	c.decision = d
	c.hasDecision = true

	fanout := make([]chan Decision, 0, len(c.subscribers))
	for _, ch := range c.subscribers {
		fanout = append(fanout, ch)
	}

	// Re-arm while still holding mu: Close must not be able to run between
	// the closed check above and the arm, or it would leave a live timer
	// behind on a closed controller.
	c.timer.cancel()
	if d.Status == StatusGrace && d.EndsAt != nil {
		fireAt := d.EndsAt.Add(GracePeriod + graceBuffer)
		c.timer.arm(fireAt.Sub(c.clock()), func() {
			c.Refresh(context.Background())
		})
	}
	c.mu.Unlock()

	decisionsPublished.WithLabelValues(string(d.Status)).Inc()

	for _, ch := range fanout {
		select {
		case ch <- d:
		default:
		}
	}
}

// RefreshPresentation recomputes the display-only fields (HoursLeft,
// WarnLevel, WarnText) from the published EndsAt and Status. It never
// touches Allowed, CanCreate, or Status; those belong to the evaluator.
func (c *Controller) RefreshPresentation(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := c.decision
	if d.EndsAt == nil {
		return
	}

	remaining := d.EndsAt.Sub(now)
	hoursLeft := ceilHours(remaining)

	warnLevel := d.WarnLevel
	warnText := d.WarnText
	if d.Active() && remaining > 0 && remaining <= WarnWindow {
		warnLevel = WarnWarning
		warnText = expiringText(remaining)
	}

	if hoursLeft == d.HoursLeft && warnLevel == d.WarnLevel && warnText == d.WarnText {
		return
	}

	d.HoursLeft = hoursLeft
	d.WarnLevel = warnLevel
	d.WarnText = warnText
	c.decision = d
}

// graceArmed is exposed for tests.
func (c *Controller) graceArmed() bool {
	return c.timer.armed()
}
