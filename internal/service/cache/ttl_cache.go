package cache

import (
	"sync"
	"time"
)

type item struct {
	v   any
	exp time.Time // zero means no expiry
}

// TTLCache is an in-process map cache with lazy expiry. It backs the
// market-health memoization and the in-process bar cache fallback.
type TTLCache struct {
	mu sync.RWMutex
	m  map[string]item
}

func NewTTLCache() *TTLCache {
	return &TTLCache{m: make(map[string]item)}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		c.mu.Lock()
		// recheck: a Set may have raced the expiry
		if cur, ok := c.m[key]; ok && cur.exp.Equal(it.exp) {
			delete(c.m, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return it.v, true
}

func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = item{v: v, exp: exp}
	c.mu.Unlock()
}

func (c *TTLCache) GetBytes(key string) ([]byte, bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return b, true, nil
}

func (c *TTLCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	c.Set(key, value, ttl)
	return nil
}

var _ BytesCache = (*TTLCache)(nil)
