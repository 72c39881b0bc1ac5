package cache

import (
	"sync"
	"time"

	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/redis"
)

// Key identifies one cached dashboard: start date + catalog hash
type Key struct {
	Start       time.Time
	CatalogHash string
}

// String is the in-memory key (start|hash)
func (k Key) String() string {
	return k.Start.Format(contracts.DateLayout) + "|" + k.CatalogHash
}

// RedisKey is the shared L2 key
func (k Key) RedisKey() string {
	return redis.DashboardKey(k.Start.Format(contracts.DateLayout), k.CatalogHash)
}

type entry struct {
	dashboard *contracts.Dashboard
	storedAt  time.Time
}

// DashboardCache is an in-memory TTL cache of pipeline results
// ⭐ SSOT: 대시보드 결과 캐싱은 이 구조체에서만
type DashboardCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	logger  *logger.Logger
}

// Stats holds cache statistics
type Stats struct {
	TotalCount int           `json:"total_count"`
	StaleCount int           `json:"stale_count"`
	TTL        time.Duration `json:"ttl"`
}

// NewDashboardCache creates a new dashboard cache
func NewDashboardCache(ttl time.Duration, log *logger.Logger) *DashboardCache {
	return &DashboardCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  log,
	}
}

// WithClock overrides the clock used for expiry
func (c *DashboardCache) WithClock(now func() time.Time) *DashboardCache {
	c.now = now
	return c
}

// Get returns a live entry. Expired entries are misses.
func (c *DashboardCache) Get(key Key) (*contracts.Dashboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key.String()]
	if !exists || c.expired(e) {
		return nil, false
	}
	return e.dashboard, true
}

// Set stores a dashboard
func (c *DashboardCache) Set(key Key, d *contracts.Dashboard) {
	c.SetAt(key, d, c.now())
}

// SetAt stores a dashboard whose age counts from storedAt.
// An entry already older than the TTL is not stored.
func (c *DashboardCache) SetAt(key Key, d *contracts.Dashboard, storedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{dashboard: d, storedAt: storedAt}
	if c.expired(e) {
		return false
	}
	c.entries[key.String()] = e
	return true
}

// Delete removes one entry
func (c *DashboardCache) Delete(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key.String())
}

// Clear drops every entry and returns how many were removed
func (c *DashboardCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.logger.WithField("count", n).Info("Cleared dashboard cache")
	return n
}

// Len returns the number of entries, expired ones included
func (c *DashboardCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// CleanStale removes expired entries
func (c *DashboardCache) CleanStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			count++
		}
	}

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned stale dashboards from cache")
	}

	return count
}

// Stats returns cache statistics
func (c *DashboardCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{TotalCount: len(c.entries), TTL: c.ttl}
	for _, e := range c.entries {
		if c.expired(e) {
			stats.StaleCount++
		}
	}
	return stats
}

func (c *DashboardCache) expired(e entry) bool {
	return c.now().Sub(e.storedAt) >= c.ttl
}
