package charts

import (
	"sync"
	"time"
)

// Cache is an in-memory TTL cache for rendered chart HTML. Each slot holds
// only the latest rendering; a new digest for the same slot replaces it.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	digest  string
	html    string
	expires time.Time
}

// NewCache builds a cache with the provided TTL. A non-positive TTL disables
// caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cachedChart),
	}
}

// GetOrRender returns the entry for slot when its digest matches, otherwise
// renders and stores a new one in its place.
func (c *Cache) GetOrRender(slot, digest string, render func() (string, error)) (string, error) {
	if html, ok := c.get(slot, digest); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(slot, digest, html)
	return html, nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := time.Now()
	n := 0
	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (c *Cache) get(slot, digest string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[slot]
	c.mu.RUnlock()
	if !ok || entry.digest != digest || time.Now().After(entry.expires) {
		return "", false
	}
	return entry.html, true
}

// set stores html for slot and drops every expired entry.
func (c *Cache) set(slot, digest, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[slot] = cachedChart{
		digest:  digest,
		html:    html,
		expires: now.Add(c.ttl),
	}
}

// size counts stored entries, live or not.
func (c *Cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
