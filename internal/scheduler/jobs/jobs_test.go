package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/macrodash/internal/cache"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/internal/lookback"
	"github.com/wonny/macrodash/pkg/logger"
)

type fakeRefresher struct {
	starts []time.Time
	errFor map[string]error
}

func (f *fakeRefresher) Refresh(ctx context.Context, start time.Time) (*contracts.Dashboard, error) {
	f.starts = append(f.starts, start)
	if err := f.errFor[start.Format(contracts.DateLayout)]; err != nil {
		return nil, err
	}
	return &contracts.Dashboard{Start: start}, nil
}

func resolver() *lookback.Resolver {
	return lookback.NewResolver().WithClock(func() time.Time {
		return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	})
}

func TestCacheWarmJob_Defaults(t *testing.T) {
	j := NewCacheWarmJob(&fakeRefresher{}, resolver(), nil, "", logger.Nop())

	assert.Equal(t, "cache_warm", j.Name())
	assert.Equal(t, "0 0 * * * *", j.Schedule())
	assert.Equal(t, []string{"1y"}, j.windows)
}

func TestCacheWarmJob_RefreshesEachWindow(t *testing.T) {
	r := &fakeRefresher{}
	j := NewCacheWarmJob(r, resolver(), []string{"1y", "ytd"}, "0 30 * * * *", logger.Nop())

	require.NoError(t, j.Run(context.Background()))
	require.Len(t, r.starts, 2)
	assert.Equal(t, "2023-06-16", r.starts[0].Format("2006-01-02"))
	assert.Equal(t, "2024-01-01", r.starts[1].Format("2006-01-02"))
}

func TestCacheWarmJob_EmptyResultIsNotFailure(t *testing.T) {
	r := &fakeRefresher{errFor: map[string]error{"2024-01-01": contracts.ErrEmptyResult}}
	j := NewCacheWarmJob(r, resolver(), []string{"ytd"}, "", logger.Nop())

	assert.NoError(t, j.Run(context.Background()))
}

func TestCacheWarmJob_ProviderErrorsJoined(t *testing.T) {
	r := &fakeRefresher{errFor: map[string]error{
		"2023-06-16": contracts.NewProviderError(contracts.ProviderFRED, "SOFR", errors.New("503")),
	}}
	j := NewCacheWarmJob(r, resolver(), []string{"1y", "bogus", "ytd"}, "", logger.Nop())

	err := j.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrProviderUnavailable))
	assert.True(t, errors.Is(err, lookback.ErrInvalidWindow))
	assert.Len(t, r.starts, 2, "remaining windows still warmed")
}

func TestCacheCleanupJob(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := cache.NewDashboardCache(time.Hour, logger.Nop()).WithClock(func() time.Time { return now })
	mem.Set(cache.Key{Start: now}, &contracts.Dashboard{})
	now = now.Add(2 * time.Hour)

	j := NewCacheCleanupJob(mem, logger.Nop())
	assert.Equal(t, "cache_cleanup", j.Name())
	assert.Equal(t, "0 */5 * * * *", j.Schedule())

	require.NoError(t, j.Run(context.Background()))
	assert.Equal(t, 0, mem.Len())
}
