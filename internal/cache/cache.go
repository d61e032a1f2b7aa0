package cache

import (
	"context"
	"time"

	"billingdesk/backend/internal/domain"
)

// PriceCache front-ends the current-price lookups done while building a
// replication set, keyed by product id.
type PriceCache interface {
	Get(ctx context.Context, productID string) (*domain.Pricing, bool, error)
	Set(ctx context.Context, productID string, value *domain.Pricing, ttl time.Duration) error
}

type NoopPriceCache struct{}

func (NoopPriceCache) Get(_ context.Context, _ string) (*domain.Pricing, bool, error) {
	return nil, false, nil
}

func (NoopPriceCache) Set(_ context.Context, _ string, _ *domain.Pricing, _ time.Duration) error {
	return nil
}
