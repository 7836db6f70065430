package redisstore

import (
	"context"
	"errors"
	"time"

	"marketdata-aggregator/internal/application"

	"github.com/redis/go-redis/v9"
)

var _ application.PriceCache = (*PriceCache)(nil)

// PriceCache stores encoded price records as plain string values with a TTL.
type PriceCache struct {
	Client *redis.Client
}

func New(client *redis.Client) *PriceCache {
	return &PriceCache{Client: client}
}

func (c *PriceCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *PriceCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *PriceCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
