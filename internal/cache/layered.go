package cache

import (
	"context"
	"time"

	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/metrics"
)

// Remote is the shared L2 store (pkg/redis.Cache in production)
type Remote interface {
	Enabled() bool
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Flush(ctx context.Context) (int, error)
}

// ClearResult counts removed entries per layer.
// The same dashboard usually lives in both layers.
type ClearResult struct {
	Memory int `json:"memory"`
	Redis  int `json:"redis"`
}

// Layered implements a two-level cache (L1: memory, L2: Redis).
// L2 errors are logged and treated as misses.
type Layered struct {
	mem     *DashboardCache
	l2      Remote
	ttl     time.Duration
	metrics *metrics.Recorder
	logger  *logger.Logger
}

// NewLayered creates a layered cache. l2 may be nil or disabled.
func NewLayered(mem *DashboardCache, l2 Remote, ttl time.Duration, log *logger.Logger) *Layered {
	return &Layered{
		mem:    mem,
		l2:     l2,
		ttl:    ttl,
		logger: log,
	}
}

// WithMetrics attaches a metrics recorder
func (lc *Layered) WithMetrics(m *metrics.Recorder) *Layered {
	lc.metrics = m
	return lc
}

// Memory exposes the L1 cache (cleanup job, stats)
func (lc *Layered) Memory() *DashboardCache {
	return lc.mem
}

func (lc *Layered) l2Enabled() bool {
	return lc.l2 != nil && lc.l2.Enabled()
}

// Get tries memory first, then Redis. An L2 hit is copied into memory
// keeping its original age, so the TTL window is never extended.
func (lc *Layered) Get(ctx context.Context, key Key) (*contracts.Dashboard, bool) {
	if d, ok := lc.mem.Get(key); ok {
		lc.metrics.RecordCacheLookup("memory", true)
		return d, true
	}
	lc.metrics.RecordCacheLookup("memory", false)

	if !lc.l2Enabled() {
		return nil, false
	}

	var d contracts.Dashboard
	found, err := lc.l2.Get(ctx, key.RedisKey(), &d)
	if err != nil {
		lc.logger.WithError(err).WithField("key", key.RedisKey()).Warn("Redis cache read failed")
		return nil, false
	}

	// 생성 시각 기준으로 나이를 계산 (없으면 지금 저장된 것으로 간주)
	storedAt := d.GeneratedAt
	if storedAt.IsZero() || storedAt.After(lc.mem.now()) {
		storedAt = lc.mem.now()
	}
	if found && !lc.mem.SetAt(key, &d, storedAt) {
		found = false
	}

	lc.metrics.RecordCacheLookup("redis", found)
	if !found {
		return nil, false
	}
	return &d, true
}

// Set writes memory and, when enabled, Redis
func (lc *Layered) Set(ctx context.Context, key Key, d *contracts.Dashboard) {
	lc.mem.Set(key, d)

	if !lc.l2Enabled() {
		return
	}
	if err := lc.l2.Set(ctx, key.RedisKey(), d, lc.ttl); err != nil {
		lc.logger.WithError(err).WithField("key", key.RedisKey()).Warn("Redis cache write failed")
	}
}

// Clear drops both layers and reports the removed entries per layer
func (lc *Layered) Clear(ctx context.Context) ClearResult {
	res := ClearResult{Memory: lc.mem.Clear()}

	if !lc.l2Enabled() {
		return res
	}
	n, err := lc.l2.Flush(ctx)
	if err != nil {
		lc.logger.WithError(err).Warn("Redis cache flush failed")
	}
	res.Redis = n
	return res
}
