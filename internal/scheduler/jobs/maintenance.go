package jobs

import (
	"context"

	"github.com/wonny/macrodash/pkg/logger"
)

// StaleCleaner removes expired cache entries
type StaleCleaner interface {
	CleanStale() int
}

// CacheCleanupJob cleans expired dashboards from the in-memory cache
type CacheCleanupJob struct {
	cache  StaleCleaner
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache StaleCleaner, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	count := j.cache.CleanStale()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Cache cleanup completed")
	}

	return nil
}
