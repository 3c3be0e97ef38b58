// Package cache holds the short-TTL task-listing cache. It sits in the
// handler layer; the services below it stay cache-agnostic.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ListingCache caches rendered task-listing responses per tenant. Any
// mutating task or justification operation within a tenant must call
// InvalidateTenant before returning.
type ListingCache struct {
	mu   sync.Mutex
	lru  *expirable.LRU[string, []byte]
	keys map[uint64]map[string]struct{}
}

// NewListingCache creates a cache holding up to size entries for ttl.
func NewListingCache(size int, ttl time.Duration) *ListingCache {
	return &ListingCache{
		lru:  expirable.NewLRU[string, []byte](size, nil, ttl),
		keys: map[uint64]map[string]struct{}{},
	}
}

// Key builds a cache key from the tenant and the query signature.
func Key(tenantID uint64, signature string) string {
	return fmt.Sprintf("%d:%s", tenantID, signature)
}

// Get returns the cached payload for a key, if present and fresh.
func (c *ListingCache) Get(tenantID uint64, signature string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(Key(tenantID, signature))
}

// Put stores a payload under the tenant's key set.
func (c *ListingCache) Put(tenantID uint64, signature string, payload []byte) {
	if c == nil {
		return
	}
	key := Key(tenantID, signature)

	c.mu.Lock()
	if c.keys[tenantID] == nil {
		c.keys[tenantID] = map[string]struct{}{}
	}
	c.keys[tenantID][key] = struct{}{}
	c.mu.Unlock()

	c.lru.Add(key, payload)
}

// InvalidateTenant drops every cached listing for one tenant. Other tenants
// keep their entries.
func (c *ListingCache) InvalidateTenant(tenantID uint64) {
	if c == nil {
		return
	}

	c.mu.Lock()
	keys := c.keys[tenantID]
	delete(c.keys, tenantID)
	c.mu.Unlock()

	for key := range keys {
		c.lru.Remove(key)
	}
}
