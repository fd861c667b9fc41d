package oracle

import (
	"fmt"
	"sync"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// DefaultTTL is how long a cached quote stays fresh.
const DefaultTTL = 45 * time.Second

type cacheEntry struct {
	price     float64
	fetchedAt time.Time
}

// Cache is an in-memory quote cache keyed by (symbol, market) with a fixed
// TTL. It is an explicit injected instance, not package state: construct it
// once, share it with the oracle, and reset it only through Reset.
//
// The map is guarded by a read-write mutex because batch fetches write to
// it from multiple goroutines.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewCache creates a cache with the given TTL. A non-positive TTL falls
// back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey formats "{market}:{symbol}", e.g. "TW:2330" or "US:VOO".
func cacheKey(symbol string, market ledger.Market) string {
	return fmt.Sprintf("%s:%s", market, symbol)
}

// Get returns the cached price if it is still within the TTL.
func (c *Cache) Get(symbol string, market ledger.Market) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[cacheKey(symbol, market)]
	if !ok || time.Since(e.fetchedAt) > c.ttl {
		return 0, false
	}
	return e.price, true
}

// GetStale returns the cached price regardless of age. Used as the last
// fallback when every fetch attempt failed: a stale quote beats none.
func (c *Cache) GetStale(symbol string, market ledger.Market) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[cacheKey(symbol, market)]
	if !ok {
		return 0, false
	}
	return e.price, true
}

// Set stores a freshly fetched price.
func (c *Cache) Set(symbol string, market ledger.Market, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(symbol, market)] = cacheEntry{
		price:     price,
		fetchedAt: time.Now(),
	}
}

// Reset drops every cached entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
