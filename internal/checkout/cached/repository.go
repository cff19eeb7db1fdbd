// Package cached decorates a domain.Repository with a read-through cache.
//
// Only Find is served from the cache; Create and Update write through to the
// inner repository and then refresh the cached entry. Cache failures are
// logged and swallowed: a broken cache degrades to the inner repository's
// behavior, it never changes repository semantics.
package cached

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/domain"
	"github.com/jcmexdev/ecommerce-checkout/internal/pkg/cache"
)

// findOp namespaces the cache keys for single-order reads.
const findOp = "order"

// Repository wraps an inner domain.Repository with a cache.
type Repository struct {
	inner domain.Repository
	cache cache.Cache
	ttl   time.Duration
}

// New returns a caching decorator around inner. Entries expire after ttl.
func New(inner domain.Repository, c cache.Cache, ttl time.Duration) *Repository {
	return &Repository{inner: inner, cache: c, ttl: ttl}
}

// Create writes through and primes the cache with the new aggregate.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.inner.Create(ctx, order); err != nil {
		return err
	}
	r.store(ctx, order)
	return nil
}

// Update writes through and replaces the cached entry. The entry is deleted
// first so a failed store leaves no stale aggregate behind.
func (r *Repository) Update(ctx context.Context, order *domain.Order) error {
	if err := r.inner.Update(ctx, order); err != nil {
		return err
	}
	key := r.cache.GenerateKey(findOp, order.ID)
	if err := r.cache.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
	}
	r.store(ctx, order)
	return nil
}

// Find serves from the cache when possible and falls back to the inner
// repository on a miss, populating the cache for the next read.
func (r *Repository) Find(ctx context.Context, id string) (*domain.Order, error) {
	key := r.cache.GenerateKey(findOp, id)

	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	} else if raw != "" {
		var order domain.Order
		if err := json.Unmarshal([]byte(raw), &order); err == nil {
			return &order, nil
		}
		// Undecodable entry: treat as a miss and let the store below replace it.
		slog.WarnContext(ctx, "cache entry corrupt", "key", key)
	}

	order, err := r.inner.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, order)
	return order, nil
}

// FindAll always goes to the inner repository; the full listing is not cached.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.inner.FindAll(ctx)
}

func (r *Repository) store(ctx context.Context, order *domain.Order) {
	key := r.cache.GenerateKey(findOp, order.ID)
	raw, err := json.Marshal(order)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}
