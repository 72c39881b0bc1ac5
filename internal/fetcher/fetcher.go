package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/metrics"
)

// DefaultTimeout bounds one full provider fan-out
const DefaultTimeout = 30 * time.Second

// Fetcher pulls every catalog series for a start date
// ⭐ SSOT: 외부 시계열 수집 오케스트레이션은 이 패키지에서만
type Fetcher struct {
	equity  contracts.EquitySource
	macro   contracts.MacroSource
	catalog *catalog.Catalog
	timeout time.Duration
	now     func() time.Time
	metrics *metrics.Recorder
	logger  *logger.Logger
}

// New creates a Fetcher. A zero timeout uses DefaultTimeout.
func New(equity contracts.EquitySource, macro contracts.MacroSource, cat *catalog.Catalog, timeout time.Duration, log *logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		equity:  equity,
		macro:   macro,
		catalog: cat,
		timeout: timeout,
		now:     time.Now,
		logger:  log.WithField("module", "fetcher"),
	}
}

// WithClock overrides the clock used to compute the window end
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// WithMetrics attaches a metrics recorder
func (f *Fetcher) WithMetrics(m *metrics.Recorder) *Fetcher {
	f.metrics = m
	return f
}

// Fetch issues the equity call and every macro call concurrently.
// Any failure cancels the rest; no partial bundle is returned.
func (f *Fetcher) Fetch(ctx context.Context, start time.Time) (*contracts.FetchBundle, error) {
	start = contracts.Day(start)
	end := contracts.Day(f.now()).AddDate(0, 0, 1) // 당일 포함

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	equitySeries := f.catalog.EquitySeries()
	macroSeries := f.catalog.MacroSeries()

	var (
		closes map[string][]contracts.Observation
		macro  = make([][]contracts.Observation, len(macroSeries))
	)

	startTime := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		codes := codesOf(equitySeries)
		t0 := time.Now()
		res, err := f.equity.FetchCloses(gctx, codes, start, end)
		f.metrics.RecordProviderFetch(string(contracts.ProviderYahoo), strings.Join(codes, ","), time.Since(t0), err)
		if err != nil {
			return contracts.NewProviderError(contracts.ProviderYahoo, strings.Join(codes, ","), err)
		}
		closes = res
		return nil
	})

	for i, s := range macroSeries {
		g.Go(func() error {
			t0 := time.Now()
			obs, err := f.macro.FetchSeries(gctx, s.Code, start)
			f.metrics.RecordProviderFetch(string(contracts.ProviderFRED), s.Code, time.Since(t0), err)
			if err != nil {
				return contracts.NewProviderError(contracts.ProviderFRED, s.Code, err)
			}
			macro[i] = obs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		f.logger.WithError(err).WithFields(map[string]interface{}{
			"start":    start.Format(contracts.DateLayout),
			"duration": time.Since(startTime),
		}).Error("Fetch failed")
		return nil, err
	}

	bundle := &contracts.FetchBundle{Start: start}
	equityRows := 0
	for _, s := range equitySeries {
		obs := closes[s.Code]
		for _, o := range obs {
			if o.Value.Valid {
				equityRows++
			}
		}
		bundle.Equity = append(bundle.Equity, contracts.RawSeries{
			Alias:        s.Alias,
			Code:         s.Code,
			Provider:     s.Provider,
			Observations: obs,
		})
	}
	for i, s := range macroSeries {
		bundle.Macro = append(bundle.Macro, contracts.RawSeries{
			Alias:        s.Alias,
			Code:         s.Code,
			Provider:     s.Provider,
			Observations: macro[i],
		})
	}

	if equityRows == 0 {
		return nil, fmt.Errorf("no equity closes since %s: %w", start.Format(contracts.DateLayout), contracts.ErrEmptyResult)
	}

	f.logger.WithFields(map[string]interface{}{
		"start":       start.Format(contracts.DateLayout),
		"equity_rows": equityRows,
		"macro":       len(macroSeries),
		"duration":    time.Since(startTime),
	}).Info("Fetch completed")

	return bundle, nil
}

// IsTimeout reports whether err came from the fetch deadline
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

func codesOf(series []catalog.Series) []string {
	codes := make([]string, len(series))
	for i, s := range series {
		codes[i] = s.Code
	}
	return codes
}
