package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps annotation payloads in process until they expire
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory layer; expired entries are swept every
// sweepEvery
func NewMemoryCache(ttl, sweepEvery time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(ttl, sweepEvery)}
}

// Get returns the payload stored under key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if v, ok := c.items.Get(key); ok {
		payload, isBytes := v.([]byte)
		return payload, isBytes
	}
	return nil, false
}

// Set stores a payload; ttl 0 falls back to the layer's ttl
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	expiry := ttl
	if expiry == 0 {
		expiry = gocache.DefaultExpiration
	}
	c.items.Set(key, value, expiry)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len counts entries not yet swept, expired or not
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
