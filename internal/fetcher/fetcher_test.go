package fetcher

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

	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/logger"
)

var (
	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

type fakeEquity struct {
	data  map[string][]contracts.Observation
	err   error
	delay time.Duration
	calls int32
	end   time.Time
}

func (f *fakeEquity) FetchCloses(ctx context.Context, symbols []string, start, end time.Time) (map[string][]contracts.Observation, error) {
	atomic.AddInt32(&f.calls, 1)
	f.end = end
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

type fakeMacro struct {
	mu     sync.Mutex
	data   map[string][]contracts.Observation
	fail   map[string]error
	starts map[string]time.Time
}

func (f *fakeMacro) FetchSeries(ctx context.Context, code string, start time.Time) ([]contracts.Observation, error) {
	f.mu.Lock()
	if f.starts == nil {
		f.starts = make(map[string]time.Time)
	}
	f.starts[code] = start
	f.mu.Unlock()

	if err := f.fail[code]; err != nil {
		return nil, err
	}
	return f.data[code], nil
}

func obs(date time.Time, v float64) contracts.Observation {
	return contracts.Observation{Date: date, Value: null.FloatFrom(v)}
}

func equityData() map[string][]contracts.Observation {
	return map[string][]contracts.Observation{
		"SPY":  {obs(jan2, 472.65)},
		"QQQ":  {obs(jan2, 402.0)},
		"^TNX": {obs(jan2, 3.95)},
	}
}

func newFetcher(eq *fakeEquity, mac *fakeMacro) *Fetcher {
	return New(eq, mac, catalog.Default(), time.Second, logger.Nop()).
		WithClock(func() time.Time { return time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC) })
}

func TestFetch_Success(t *testing.T) {
	eq := &fakeEquity{data: equityData()}
	mac := &fakeMacro{data: map[string][]contracts.Observation{
		"WALCL": {obs(jan1, 8000000)},
		"SOFR":  {obs(jan2, 5.32)},
	}}

	bundle, err := newFetcher(eq, mac).Fetch(context.Background(), jan1.Add(13*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, jan1, bundle.Start)
	require.Len(t, bundle.Equity, 3)
	require.Len(t, bundle.Macro, 5)
	assert.Equal(t, contracts.ColTenYearYield, bundle.Equity[2].Alias)
	assert.Equal(t, contracts.ColTotalAssets, bundle.Macro[0].Alias)
	assert.Equal(t, 1, bundle.Macro[0].Len())

	// 각 매크로 시계열은 자체 observation_start 로 호출
	assert.Len(t, mac.starts, 5)
	for code, start := range mac.starts {
		assert.Equal(t, jan1, start, code)
	}
	assert.Equal(t, time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC), eq.end)
	assert.Equal(t, int32(1), eq.calls)
}

func TestFetch_MacroFailure(t *testing.T) {
	cause := errors.New("500 from upstream")
	eq := &fakeEquity{data: equityData()}
	mac := &fakeMacro{fail: map[string]error{"WTREGEN": cause}}

	bundle, err := newFetcher(eq, mac).Fetch(context.Background(), jan1)
	require.Error(t, err)
	assert.Nil(t, bundle, "no partial bundle")

	assert.True(t, errors.Is(err, contracts.ErrProviderUnavailable))
	assert.True(t, errors.Is(err, cause))

	var pe *contracts.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, contracts.ProviderFRED, pe.Provider)
	assert.Equal(t, "WTREGEN", pe.Series)
}

func TestFetch_EquityFailure(t *testing.T) {
	eq := &fakeEquity{err: errors.New("dns")}

	_, err := newFetcher(eq, &fakeMacro{}).Fetch(context.Background(), jan1)

	var pe *contracts.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, contracts.ProviderYahoo, pe.Provider)
	assert.Equal(t, "SPY,QQQ,^TNX", pe.Series)
}

func TestFetch_Timeout(t *testing.T) {
	eq := &fakeEquity{data: equityData(), delay: time.Second}
	f := New(eq, &fakeMacro{}, catalog.Default(), 20*time.Millisecond, logger.Nop())

	_, err := f.Fetch(context.Background(), jan1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrProviderUnavailable))
	assert.True(t, IsTimeout(err))
}

func TestFetch_EmptyEquity(t *testing.T) {
	eq := &fakeEquity{data: map[string][]contracts.Observation{}}

	_, err := newFetcher(eq, &fakeMacro{}).Fetch(context.Background(), jan1)
	assert.True(t, errors.Is(err, contracts.ErrEmptyResult))
	assert.False(t, errors.Is(err, contracts.ErrProviderUnavailable))
}

func TestFetch_AllNullClosesIsEmpty(t *testing.T) {
	eq := &fakeEquity{data: map[string][]contracts.Observation{
		"SPY": {{Date: jan2}},
		"QQQ": {{Date: jan2}},
	}}

	_, err := newFetcher(eq, &fakeMacro{}).Fetch(context.Background(), jan1)
	assert.True(t, errors.Is(err, contracts.ErrEmptyResult))
}

func TestNew_DefaultTimeout(t *testing.T) {
	f := New(&fakeEquity{}, &fakeMacro{}, catalog.Default(), 0, logger.Nop())
	assert.Equal(t, DefaultTimeout, f.timeout)
}
