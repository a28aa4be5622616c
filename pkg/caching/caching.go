package caching

import "sync"

// Cache remembers where each asset URL was stored during one job, so that
// repeated references are rewritten without downloading the asset again.
// Only successful downloads are recorded.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	hits    int
}

// NewCache creates an empty Cache. Each job gets its own instance.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the stored relative path for url and true on a hit.
func (c *Cache) Get(url string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	rel, ok := c.entries[url]
	if ok {
		c.hits++
	}
	return rel, ok
}

// Set records the relative path an asset was stored under.
func (c *Cache) Set(url, relPath string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[url] = relPath
	c.mu.Unlock()
}

// Len returns the number of distinct assets stored.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Hits returns how many lookups avoided a download.
func (c *Cache) Hits() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits
}
