package access

import (
	"context"
	"strings"
	"sync"

	"github.com/kapostolos1/estia-app/pkg/rediskey"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Listener bridges row-change notifications from redis pub/sub into
// controller refreshes. It subscribes to the subscription and entitlement
// channel patterns and forwards each event to the manager by business id.
type Listener struct {
	rdb     *redis.Client
	manager *Manager

	mu   sync.Mutex
	sub  *redis.PubSub
	done sync.WaitGroup
}

func NewListener(rdb *redis.Client, manager *Manager) *Listener {
	return &Listener{rdb: rdb, manager: manager}
}

func (l *Listener) Start() {
	sub := l.rdb.PSubscribe(context.Background(), rediskey.SubscriptionPattern, rediskey.EntitlementPattern)

	l.mu.Lock()
	l.sub = sub
	l.mu.Unlock()

	l.done.Add(1)
	go func() {
		defer l.done.Done()

		// Channel() reconnects and resubscribes on its own; the range ends
		// only when the PubSub is closed.
		for msg := range sub.Channel() {
			l.dispatch(context.Background(), msg.Channel)
		}
	}()
}

// Stop closes the subscription, which ends the receive loop, and waits for
// it to drain.
func (l *Listener) Stop() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			zap.L().Warn("failed to close change subscription", zap.Error(err))
		}
	}
	l.done.Wait()
}

func (l *Listener) dispatch(ctx context.Context, channel string) {
	kind, businessID, ok := strings.Cut(channel, ":")
	if !ok || businessID == "" {
		zap.L().Warn("ignoring malformed change channel", zap.String("channel", channel))
		return
	}

	switch kind {
	case rediskey.SubscriptionPrefix, rediskey.EntitlementPrefix:
		notifyEvents.WithLabelValues(kind).Inc()
		l.manager.NotifyChange(ctx, businessID)
	default:
		zap.L().Warn("ignoring change on unknown channel", zap.String("channel", channel))
	}
}
