package report

import (
	"time"

	"moneymate/internal/cache"
)

// Cache memoizes rendered report views per month so regenerating the
// same month skips the backend. Mutating a month's transactions must
// invalidate that month.
type Cache struct {
	lru *cache.LRU[View]
}

const (
	cacheCapacity = 24 // two years of months
	cacheTTL      = 5 * time.Minute
)

func NewCache() *Cache {
	return &Cache{lru: cache.NewLRU[View](cacheCapacity, cacheTTL)}
}

func (c *Cache) Get(month string) (View, bool) {
	return c.lru.Get(month)
}

func (c *Cache) Put(v View) {
	c.lru.Set(v.Month, v)
}

// Invalidate drops the cached view for a month, if any.
func (c *Cache) Invalidate(month string) {
	c.lru.Delete(month)
}

// Purge drops every cached month; used when a session ends.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Sweep drops expired months; used by the cache janitor.
func (c *Cache) Sweep() int {
	return c.lru.Sweep()
}
