package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/internal/lookback"
	"github.com/wonny/macrodash/pkg/logger"
)

// Refresher recomputes and re-caches the dashboard for a start date
type Refresher interface {
	Refresh(ctx context.Context, start time.Time) (*contracts.Dashboard, error)
}

// CacheWarmJob refreshes the dashboards of the configured lookback windows
// so user requests hit a warm cache
type CacheWarmJob struct {
	refresher Refresher
	resolver  *lookback.Resolver
	windows   []string
	schedule  string
	logger    *logger.Logger
}

// NewCacheWarmJob creates a new cache warm-up job
func NewCacheWarmJob(refresher Refresher, resolver *lookback.Resolver, windows []string, schedule string, log *logger.Logger) *CacheWarmJob {
	if len(windows) == 0 {
		windows = []string{lookback.DefaultWindow}
	}
	if schedule == "" {
		schedule = "0 0 * * * *"
	}
	return &CacheWarmJob{
		refresher: refresher,
		resolver:  resolver,
		windows:   windows,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *CacheWarmJob) Name() string {
	return "cache_warm"
}

// Schedule returns the cron schedule (default: hourly)
func (j *CacheWarmJob) Schedule() string {
	return j.schedule
}

// Run refreshes every window. "Data not ready" is not a failure;
// provider errors are returned so the scheduler retries.
func (j *CacheWarmJob) Run(ctx context.Context) error {
	var errs []error
	warmed := 0

	for _, window := range j.windows {
		start, err := j.resolver.Resolve(window, "")
		if err != nil {
			errs = append(errs, err)
			continue
		}

		log := j.logger.WithFields(map[string]interface{}{
			"window": window,
			"start":  start.Format(contracts.DateLayout),
		})

		d, err := j.refresher.Refresh(ctx, start)
		switch {
		case errors.Is(err, contracts.ErrEmptyResult):
			log.Info("Cache warm skipped, data not ready")
		case err != nil:
			errs = append(errs, fmt.Errorf("warm %s: %w", window, err))
		default:
			warmed++
			log.WithFields(map[string]interface{}{
				"rows":    d.Table.Len(),
				"funding": d.Summary.Funding,
			}).Debug("Window warmed")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"warmed": warmed,
		"failed": len(errs),
	}).Info("Cache warm completed")

	return errors.Join(errs...)
}
