package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/macrodash/internal/cache"
	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/metrics"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	calls  int32
	delay  time.Duration
	err    error
	bundle func() *contracts.FetchBundle
}

func (f *fakeFetcher) Fetch(ctx context.Context, s time.Time) (*contracts.FetchBundle, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.bundle(), nil
}

func raw(alias string, values ...float64) contracts.RawSeries {
	s := contracts.RawSeries{Alias: alias, Code: alias}
	for i, v := range values {
		s.Observations = append(s.Observations, contracts.Observation{
			Date:  time.Date(2024, 1, 8+i, 0, 0, 0, 0, time.UTC),
			Value: null.FloatFrom(v),
		})
	}
	return s
}

func sampleBundle() *contracts.FetchBundle {
	return &contracts.FetchBundle{
		Start: start,
		Equity: []contracts.RawSeries{
			raw("SPY", 474.6, 473.9),
			raw("QQQ", 404.0, 405.0),
			raw("10Y_Yield", 4.0, 4.02),
		},
		Macro: []contracts.RawSeries{
			raw("Total_Assets", 8000000),
			raw("TGA", 700000),
			raw("RRP", 300000),
			raw("SOFR", 5.32, 5.40),
			raw("EFFR", 5.33, 5.30),
		},
	}
}

func newPipeline(t *testing.T, f BundleFetcher) *Pipeline {
	t.Helper()
	mem := cache.NewDashboardCache(time.Hour, logger.Nop())
	p, err := New(f, catalog.Default(), cache.NewLayered(mem, nil, time.Hour, logger.Nop()), 0.05, logger.Nop())
	require.NoError(t, err)
	return p.WithMetrics(metrics.New()).WithClock(func() time.Time {
		return time.Date(2024, 1, 9, 22, 0, 0, 0, time.UTC)
	})
}

func TestRun_EndToEnd(t *testing.T) {
	p := newPipeline(t, &fakeFetcher{bundle: sampleBundle})

	d, err := p.Run(context.Background(), start)
	require.NoError(t, err)

	assert.Equal(t, contracts.DefaultColumnOrder, d.Table.Columns)
	require.Equal(t, 2, d.Table.Len())

	last, _ := d.Table.Latest()
	assert.InDelta(t, 7000.0, last.Get(contracts.ColNetLiquidity).Float64, 1e-9)
	assert.InDelta(t, 0.10, last.Get(contracts.ColRateSpread).Float64, 1e-9)

	first := d.Table.Rows[0]
	assert.InDelta(t, -0.01, first.Get(contracts.ColRateSpread).Float64, 1e-9)

	assert.Equal(t, contracts.ClassStressed, d.Summary.Funding)
	assert.Equal(t, p.CatalogHash(), d.CatalogHash)
	assert.Len(t, d.CatalogHash, 64)
}

func TestRun_FetchErrorNoTable(t *testing.T) {
	cause := contracts.NewProviderError(contracts.ProviderFRED, "RRPONTSYD", errors.New("timeout"))
	p := newPipeline(t, &fakeFetcher{err: cause})

	d, err := p.Run(context.Background(), start)
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, contracts.ErrProviderUnavailable))
}

func TestBuild_IdempotentWithinWindow(t *testing.T) {
	f := &fakeFetcher{bundle: sampleBundle}
	p := newPipeline(t, f)

	d1, err := p.Build(context.Background(), start)
	require.NoError(t, err)
	d2, err := p.Build(context.Background(), start.Add(5*time.Hour))
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
}

func TestBuild_ConcurrentSingleUpstreamPass(t *testing.T) {
	f := &fakeFetcher{bundle: sampleBundle, delay: 50 * time.Millisecond}
	p := newPipeline(t, f)

	var wg sync.WaitGroup
	results := make([]*contracts.Dashboard, 20)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := p.Build(context.Background(), start)
			assert.NoError(t, err)
			results[i] = d
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestBuild_ErrorNotCached(t *testing.T) {
	f := &fakeFetcher{err: contracts.ErrEmptyResult}
	p := newPipeline(t, f)

	_, err := p.Build(context.Background(), start)
	assert.True(t, errors.Is(err, contracts.ErrEmptyResult))

	f.err = nil
	f.bundle = sampleBundle
	_, err = p.Build(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

func TestBuild_CallerCancelled(t *testing.T) {
	f := &fakeFetcher{bundle: sampleBundle, delay: 200 * time.Millisecond}
	p := newPipeline(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Build(ctx, start)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRefresh_ReplacesCachedEntry(t *testing.T) {
	f := &fakeFetcher{bundle: sampleBundle}
	p := newPipeline(t, f)

	d1, err := p.Build(context.Background(), start)
	require.NoError(t, err)
	d2, err := p.Refresh(context.Background(), start)
	require.NoError(t, err)
	d3, err := p.Build(context.Background(), start)
	require.NoError(t, err)

	assert.NotSame(t, d1, d2)
	assert.Same(t, d2, d3)
	assert.Equal(t, d1.Table, d2.Table)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}

func TestClearCache(t *testing.T) {
	f := &fakeFetcher{bundle: sampleBundle}
	p := newPipeline(t, f)

	_, err := p.Build(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, cache.ClearResult{Memory: 1}, p.ClearCache(context.Background()))

	_, err = p.Build(context.Background(), start)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.calls))
}
