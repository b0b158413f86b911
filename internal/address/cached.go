package address

import (
	"context"
	"time"

	"github.com/dukerupert/cadastro/internal/cache"
)

// CachedLookup remembers resolved addresses so repeated searches for the
// same CEP skip the network. Failures are never cached.
type CachedLookup struct {
	next  Lookup
	cache *cache.Memory[Address]
}

// NewCachedLookup wraps next with a cache whose entries live for ttl.
func NewCachedLookup(next Lookup, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		next:  next,
		cache: cache.NewMemory[Address](ttl, cache.DefaultCleanupInterval),
	}
}

// Search implements Lookup.
func (c *CachedLookup) Search(ctx context.Context, postalCode string) (*Address, error) {
	if a, ok := c.cache.Get(postalCode); ok {
		return &a, nil
	}

	a, err := c.next.Search(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	if a.Resolved() {
		c.cache.Set(postalCode, *a)
	}
	return a, nil
}
