package mockgateway

import (
	"sync"
	"time"
)

type cacheEntry struct {
	data     interface{}
	storedAt time.Time
}

// ttlCache keeps upstream responses keyed by provider endpoint
type ttlCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{ttl: ttl, entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *ttlCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return nil, false
	}
	return entry.data, true
}

func (c *ttlCache) set(key string, data interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: data, storedAt: c.now()}
	c.mu.Unlock()
}

// purge drops expired entries and returns how many remain
func (c *ttlCache) purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}
