package commands

import (
	"fmt"

	"github.com/wonny/macrodash/internal/cache"
	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/external/fred"
	"github.com/wonny/macrodash/internal/external/yahoo"
	"github.com/wonny/macrodash/internal/fetcher"
	"github.com/wonny/macrodash/internal/lookback"
	"github.com/wonny/macrodash/internal/pipeline"
	"github.com/wonny/macrodash/internal/scheduler"
	"github.com/wonny/macrodash/internal/scheduler/jobs"
	"github.com/wonny/macrodash/pkg/config"
	"github.com/wonny/macrodash/pkg/httputil"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/metrics"
	"github.com/wonny/macrodash/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Recorder
	redis    *redis.Client
	catalog  *catalog.Catalog
	pipeline *pipeline.Pipeline
	resolver *lookback.Resolver
}

// bootstrap wires config → logger → clients → pipeline
// ⭐ SSOT: 의존성 조립은 여기서만
func bootstrap() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if catalogPath != "" {
		cfg.Pipeline.CatalogPath = catalogPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	rec := metrics.New()

	// 3. Series catalog
	cat, err := catalog.LoadOrDefault(cfg.Pipeline.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// 4. Redis L2 (비활성화 시 no-op)
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Provider clients (각자 rate limit)
	fredClient := fred.NewClient(
		httputil.New(cfg, log).WithRateLimit(fred.DefaultRateLimit, fred.DefaultBurst),
		log, cfg.FRED,
	)
	yahooClient := yahoo.NewClient(
		httputil.New(cfg, log).WithRateLimit(yahoo.DefaultRateLimit, yahoo.DefaultBurst),
		log, cfg.Yahoo,
	)

	// 6. Fetcher + cache + pipeline
	f := fetcher.New(yahooClient, fredClient, cat, cfg.Pipeline.FetchTimeout, log).WithMetrics(rec)

	mem := cache.NewDashboardCache(cfg.Pipeline.CacheTTL, log)
	layered := cache.NewLayered(mem, redis.NewCache(rdb, "macrodash"), cfg.Pipeline.CacheTTL, log).WithMetrics(rec)

	p, err := pipeline.New(f, cat, layered, cfg.Pipeline.StressThreshold, log)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	p.WithMetrics(rec)

	log.WithFields(map[string]interface{}{
		"series":   len(cat.Series),
		"formulas": len(cat.Formulas),
		"redis":    rdb.Enabled(),
		"hash":     p.CatalogHash(),
	}).Info("Pipeline initialized")

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  rec,
		redis:    rdb,
		catalog:  cat,
		pipeline: p,
		resolver: lookback.NewResolver(),
	}, nil
}

// newScheduler registers the cache maintenance jobs
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	warm := jobs.NewCacheWarmJob(a.pipeline, a.resolver, a.cfg.Pipeline.WarmWindows, a.cfg.Pipeline.WarmSchedule, a.log)
	if err := sched.AddJob(warm); err != nil {
		return nil, err
	}

	if err := sched.AddJob(jobs.NewCacheCleanupJob(a.pipeline.Cache().Memory(), a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}

// Close releases external connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Redis close failed")
	}
}
