package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"billingdesk/backend/internal/domain"
)

type RedisPriceCache struct {
	client *redis.Client
}

func NewRedisPriceCache(addr string, password string, db int) *RedisPriceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisPriceCache{client: client}
}

func (c *RedisPriceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

func (c *RedisPriceCache) Get(ctx context.Context, productID string) (*domain.Pricing, bool, error) {
	val, err := c.client.Get(ctx, priceKey(productID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var pricing domain.Pricing
	if err := json.Unmarshal([]byte(val), &pricing); err != nil {
		return nil, false, err
	}
	return &pricing, true, nil
}

func (c *RedisPriceCache) Set(ctx context.Context, productID string, value *domain.Pricing, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, priceKey(productID), payload, ttl).Err()
}

func priceKey(productID string) string {
	return "price:" + productID
}
