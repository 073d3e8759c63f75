package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farmdirect/api/internal/domain"
)

// ProductCache is a short-lived read-through cache for catalog lookups.
// It is never consulted inside the order transaction, where stock and
// prices are re-read under row locks.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

const defaultTTL = time.Minute

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ProductCache{client: client, ttl: ttl}
}

func key(productID string) string {
	return "product:" + productID
}

// Get returns nil without error on a miss.
func (c *ProductCache) Get(ctx context.Context, productID string) (*domain.Product, error) {
	payload, err := c.client.Get(ctx, key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p domain.Product
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, product domain.Product) error {
	payload, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(product.ID), payload, c.ttl).Err()
}

func (c *ProductCache) Delete(ctx context.Context, productID string) error {
	return c.client.Del(ctx, key(productID)).Err()
}
