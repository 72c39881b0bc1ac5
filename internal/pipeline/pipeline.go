package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/macrodash/internal/align"
	"github.com/wonny/macrodash/internal/cache"
	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/internal/derive"
	"github.com/wonny/macrodash/internal/summary"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/metrics"
)

// BundleFetcher pulls the raw series for a start date
type BundleFetcher interface {
	Fetch(ctx context.Context, start time.Time) (*contracts.FetchBundle, error)
}

// Pipeline runs Fetch → Align → Derive → Summary behind the result cache
// ⭐ SSOT: 대시보드 생성 흐름은 이 구조체에서만
type Pipeline struct {
	fetcher     BundleFetcher
	catalog     *catalog.Catalog
	catalogHash string
	engine      *derive.Engine
	summary     *summary.Builder
	cache       *cache.Layered
	group       singleflight.Group
	now         func() time.Time
	metrics     *metrics.Recorder
	logger      *logger.Logger
}

// New creates a pipeline for a catalog
func New(f BundleFetcher, cat *catalog.Catalog, c *cache.Layered, threshold float64, log *logger.Logger) (*Pipeline, error) {
	hash, err := cat.Hash()
	if err != nil {
		return nil, fmt.Errorf("catalog hash: %w", err)
	}

	return &Pipeline{
		fetcher:     f,
		catalog:     cat,
		catalogHash: hash,
		engine:      derive.New(cat),
		summary:     summary.New(cat, threshold),
		cache:       c,
		now:         time.Now,
		logger:      log.WithField("module", "pipeline"),
	}, nil
}

// WithMetrics attaches a metrics recorder
func (p *Pipeline) WithMetrics(m *metrics.Recorder) *Pipeline {
	p.metrics = m
	return p
}

// WithClock overrides the clock used for GeneratedAt
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Catalog returns the catalog in use
func (p *Pipeline) Catalog() *catalog.Catalog {
	return p.catalog
}

// CatalogHash returns the catalog hash that keys the cache
func (p *Pipeline) CatalogHash() string {
	return p.catalogHash
}

// Cache exposes the result cache (cleanup job, admin endpoint)
func (p *Pipeline) Cache() *cache.Layered {
	return p.cache
}

func (p *Pipeline) key(start time.Time) cache.Key {
	return cache.Key{Start: contracts.Day(start), CatalogHash: p.catalogHash}
}

// Build returns the dashboard for start, from cache when possible.
// Concurrent misses for the same key share one upstream pass.
func (p *Pipeline) Build(ctx context.Context, start time.Time) (*contracts.Dashboard, error) {
	key := p.key(start)
	if d, ok := p.cache.Get(ctx, key); ok {
		return d, nil
	}
	return p.shared(ctx, key, false)
}

// Refresh recomputes the dashboard for start and replaces the cached entry
func (p *Pipeline) Refresh(ctx context.Context, start time.Time) (*contracts.Dashboard, error) {
	return p.shared(ctx, p.key(start), true)
}

// shared runs one pass per key at a time. The pass is detached from the
// caller's cancellation (it keeps its fetch timeout) so one cancelled waiter
// does not fail the others; each waiter still returns on its own ctx.
func (p *Pipeline) shared(ctx context.Context, key cache.Key, refresh bool) (*contracts.Dashboard, error) {
	flightKey := key.String()
	if refresh {
		flightKey = "refresh|" + flightKey
	}

	workCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(flightKey, func() (interface{}, error) {
		if !refresh {
			// 다른 요청이 방금 채웠을 수 있음
			if d, ok := p.cache.Get(workCtx, key); ok {
				return d, nil
			}
		}
		d, err := p.Run(workCtx, key.Start)
		if err != nil {
			return nil, err
		}
		p.cache.Set(workCtx, key, d)
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*contracts.Dashboard), nil
	}
}

// Run executes one uncached fetch-align-derive-summary pass.
// On error no table is returned.
func (p *Pipeline) Run(ctx context.Context, start time.Time) (*contracts.Dashboard, error) {
	start = contracts.Day(start)
	log := p.logger.WithField("start", start.Format(contracts.DateLayout))
	startTime := time.Now()

	bundle, err := p.fetcher.Fetch(ctx, start)
	if err != nil {
		p.recordOutcome(err)
		return nil, fmt.Errorf("%s: %w", contracts.StageFetch, err)
	}

	aligned := align.Align(bundle)
	log.WithFields(map[string]interface{}{
		"stage": contracts.StageAlign.String(),
		"rows":  aligned.Len(),
	}).Debug("Aligned series")

	derived := p.engine.Apply(aligned)

	sum, err := p.summary.Build(derived)
	if err != nil {
		p.recordOutcome(err)
		return nil, fmt.Errorf("%s: %w", contracts.StageSummary, err)
	}

	d := &contracts.Dashboard{
		Start:       start,
		Table:       *derived,
		Summary:     *sum,
		CatalogHash: p.catalogHash,
		GeneratedAt: p.now().UTC(),
	}

	p.recordOutcome(nil)
	p.recordHeadline(sum)

	log.WithFields(map[string]interface{}{
		"rows":     derived.Len(),
		"as_of":    sum.AsOf.Format(contracts.DateLayout),
		"funding":  sum.Funding,
		"duration": time.Since(startTime),
	}).Info("Dashboard built")

	return d, nil
}

// ClearCache drops every cached dashboard
func (p *Pipeline) ClearCache(ctx context.Context) cache.ClearResult {
	return p.cache.Clear(ctx)
}

func (p *Pipeline) recordOutcome(err error) {
	switch {
	case err == nil:
		p.metrics.RecordPipelineRun("ok")
	case errors.Is(err, contracts.ErrEmptyResult):
		p.metrics.RecordPipelineRun("empty")
	default:
		p.metrics.RecordPipelineRun("error")
	}
}

func (p *Pipeline) recordHeadline(s *contracts.Summary) {
	m, ok := s.Metric(contracts.ColNetLiquidity)
	if !ok || !m.Latest.Valid || !s.RateSpread.Valid {
		return
	}
	p.metrics.RecordHeadline(m.Latest.Float64, s.RateSpread.Float64, s.Funding == contracts.ClassStressed)
}

// CacheStats returns in-memory cache statistics
func (p *Pipeline) CacheStats() cache.Stats {
	return p.cache.Memory().Stats()
}
