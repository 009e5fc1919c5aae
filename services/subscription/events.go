package subscription

import (
	"context"

	"github.com/kapostolos1/estia-app/pkg/rediskey"

	"github.com/redis/go-redis/v9"
)

// ChangePublisher announces a subscription row change so listeners can
// reconcile without polling.
type ChangePublisher interface {
	PublishChange(ctx context.Context, businessID string) error
}

type redisPublisher struct {
	rdb *redis.Client
}

func NewChangePublisher(rdb *redis.Client) ChangePublisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) PublishChange(ctx context.Context, businessID string) error {
	return p.rdb.Publish(ctx, rediskey.SubscriptionChannel(businessID), "changed").Err()
}
