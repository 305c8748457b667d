// Package cache holds the in-process caches used to avoid hitting the database on
// hot lookups, backed by ristretto.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/classterra/school-platform-backend/internal/data"
)

const defaultTenantCacheTTL = 3 * time.Minute

// TenantCache caches tenant root records by slug.
type TenantCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewTenantCache() (*TenantCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tenant cache: %w", err)
	}

	cache.Wait()

	return &TenantCache{
		cache: cache,
		ttl:   defaultTenantCacheTTL,
	}, nil
}

func (c *TenantCache) GetBySlug(slug string) (*data.Tenant, bool) {
	cached, found := c.cache.Get(slug)
	if !found {
		return nil, false
	}

	tenant, ok := cached.(*data.Tenant)
	if !ok || tenant.DeletedAt != nil {
		c.cache.Del(slug)
		return nil, false
	}
	return tenant, true
}

func (c *TenantCache) Set(tenant *data.Tenant) {
	if tenant == nil {
		return
	}
	c.cache.SetWithTTL(tenant.Slug, tenant, 1, c.ttl)
}

// Invalidate drops the cached entry for a slug, used after updates and deletes.
func (c *TenantCache) Invalidate(slug string) {
	c.cache.Del(slug)
}
