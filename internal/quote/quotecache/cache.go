// Package quotecache is a TTL cache for resolved quotes, keyed by
// asset type + symbol. It exists to keep portfolio views from hammering
// rate-limited providers; a short TTL (30-60s) is plenty.
package quotecache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"marketdata/internal/quote"
)

type entry struct {
	expiresAt time.Time
	q         quote.Quote
}

// Cache caches one quote per key for a TTL. The zero value with TTL <= 0
// is a disabled cache: every Fetch goes straight to the fill function.
type Cache struct {
	TTL      time.Duration
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry
	sf    singleflight.Group
}

// Get returns the cached quote for key if present and not expired.
func (c *Cache) Get(key string) (quote.Quote, bool) {
	if c == nil || c.TTL <= 0 {
		return quote.Quote{}, false
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return quote.Quote{}, false
	}
	return e.q, true
}

// Put stores q under key. Invalid quotes are never cached.
func (c *Cache) Put(key string, q quote.Quote) {
	if c == nil || c.TTL <= 0 || !q.Valid() {
		return
	}
	c.mu.Lock()
	if c.items == nil {
		c.items = make(map[string]entry)
	}
	c.items[key] = entry{expiresAt: time.Now().Add(c.TTL), q: q}
	c.evictLocked()
	c.mu.Unlock()
}

// Fetch returns the cached quote for key, or runs fill and caches its
// result. Concurrent misses for the same key are coalesced into a single
// fill call.
func (c *Cache) Fetch(key string, fill func() (quote.Quote, error)) (quote.Quote, error) {
	if c == nil || c.TTL <= 0 {
		return fill()
	}
	if q, ok := c.Get(key); ok {
		return q, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		// Double check: another caller may have filled while we queued.
		if q, ok := c.Get(key); ok {
			return q, nil
		}
		q, err := fill()
		if err != nil {
			return quote.Quote{}, err
		}
		c.Put(key, q)
		return q, nil
	})
	if err != nil {
		return quote.Quote{}, err
	}
	return v.(quote.Quote), nil
}

// evictLocked best-effort caps cache size: expired entries first, then
// arbitrary keys until under the limit. Caller holds the write lock.
func (c *Cache) evictLocked() {
	if c.MaxItems <= 0 || len(c.items) <= c.MaxItems {
		return
	}
	now := time.Now()
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
		if len(c.items) <= c.MaxItems {
			return
		}
	}
	for k := range c.items {
		if len(c.items) <= c.MaxItems {
			return
		}
		delete(c.items, k)
	}
}
