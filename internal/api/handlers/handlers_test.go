package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/macrodash/internal/cache"
	"github.com/wonny/macrodash/internal/catalog"
	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/internal/lookback"
	"github.com/wonny/macrodash/pkg/logger"
)

var today = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeBuilder struct {
	err       error
	lastStart time.Time
	dashboard *contracts.Dashboard
}

func (f *fakeBuilder) Build(ctx context.Context, start time.Time) (*contracts.Dashboard, error) {
	f.lastStart = start
	if f.err != nil {
		return nil, f.err
	}
	return f.dashboard, nil
}

func sampleDashboard() *contracts.Dashboard {
	rows := make([]contracts.Row, 3)
	for i := range rows {
		rows[i] = contracts.Row{
			Date:   time.Date(2024, 6, 12+i, 0, 0, 0, 0, time.UTC),
			Values: map[string]null.Float{contracts.ColSPY: null.FloatFrom(540 + float64(i))},
		}
	}
	return &contracts.Dashboard{
		Start: time.Date(2023, 6, 16, 0, 0, 0, 0, time.UTC),
		Table: contracts.Table{Columns: []string{contracts.ColSPY}, Rows: rows},
	}
}

func newDashboardHandler(b *fakeBuilder) *DashboardHandler {
	resolver := lookback.NewResolver().WithClock(func() time.Time { return today })
	return NewDashboardHandler(b, resolver, logger.Nop())
}

func TestGetDashboard_DefaultWindow(t *testing.T) {
	b := &fakeBuilder{dashboard: sampleDashboard()}
	rec := httptest.NewRecorder()

	newDashboardHandler(b).GetDashboard(rec, httptest.NewRequest("GET", "/api/dashboard", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2023-06-16", b.lastStart.Format("2006-01-02"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	table := body["table"].(map[string]interface{})
	assert.Len(t, table["rows"], 3)
}

func TestGetDashboard_StartAndRows(t *testing.T) {
	d := sampleDashboard()
	b := &fakeBuilder{dashboard: d}
	rec := httptest.NewRecorder()

	newDashboardHandler(b).GetDashboard(rec, httptest.NewRequest("GET", "/api/dashboard?start=2024-01-02&rows=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-02", b.lastStart.Format("2006-01-02"))

	var got contracts.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Table.Rows, 1)
	assert.Equal(t, "2024-06-14", got.Table.Rows[0].Date.Format("2006-01-02"))
	assert.Len(t, d.Table.Rows, 3, "cached dashboard untouched")
}

func TestGetDashboard_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown window", "?window=10y"},
		{"bad date", "?start=2024/01/02"},
		{"future start", "?start=2024-07-01"},
		{"negative rows", "?rows=-1"},
		{"non numeric rows", "?rows=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBuilder{dashboard: sampleDashboard()}
			rec := httptest.NewRecorder()

			newDashboardHandler(b).GetDashboard(rec, httptest.NewRequest("GET", "/api/dashboard"+tt.query, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.True(t, b.lastStart.IsZero(), "no fetch on bad input")
		})
	}
}

func TestGetDashboard_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
	}{
		{"empty result is loading", contracts.ErrEmptyResult, http.StatusAccepted, "loading"},
		{
			"provider failure",
			contracts.NewProviderError(contracts.ProviderFRED, "SOFR", errors.New("503")),
			http.StatusBadGateway, "failed",
		},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, "failed"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newDashboardHandler(&fakeBuilder{err: tt.err}).GetDashboard(rec, httptest.NewRequest("GET", "/api/dashboard?window=3m", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body StatusResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestGetDashboard_ProviderFailureHidesCause(t *testing.T) {
	const key = "abcdef0123456789abcdef0123456789"
	cause := errors.New(`Get "https://api.stlouisfed.org/fred/series/observations?api_key=` + key + `": dial tcp: connection refused`)
	err := fmt.Errorf("%s: %w", contracts.StageFetch, contracts.NewProviderError(contracts.ProviderFRED, "WALCL", cause))

	rec := httptest.NewRecorder()
	newDashboardHandler(&fakeBuilder{err: err}).GetDashboard(rec, httptest.NewRequest("GET", "/api/dashboard", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), key)
	assert.NotContains(t, rec.Body.String(), "dial tcp")

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed", body.Status)
	assert.Equal(t, "fred", body.Provider)
	assert.Equal(t, "WALCL", body.Series)
	assert.Equal(t, "provider unavailable", body.Error)
}

func TestGetWindows(t *testing.T) {
	rec := httptest.NewRecorder()
	newDashboardHandler(&fakeBuilder{}).GetWindows(rec, httptest.NewRequest("GET", "/api/windows", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Default string            `json:"default"`
		Windows []lookback.Window `json:"windows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1y", body.Default)
	assert.Len(t, body.Windows, len(lookback.Presets))
}

func TestGetCatalog(t *testing.T) {
	cat := catalog.Default()
	rec := httptest.NewRecorder()

	NewCatalogHandler(cat, "deadbeef").GetCatalog(rec, httptest.NewRequest("GET", "/api/catalog", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "deadbeef", body.Hash)
	assert.Equal(t, contracts.DefaultColumnOrder, body.Columns)
	assert.Len(t, body.Formulas, 2)
}

type fakeAdmin struct{ cleared int }

func (f *fakeAdmin) ClearCache(ctx context.Context) cache.ClearResult {
	f.cleared++
	return cache.ClearResult{Memory: 3, Redis: 3}
}

func (f *fakeAdmin) CacheStats() cache.Stats {
	return cache.Stats{TotalCount: 2, StaleCount: 1, TTL: time.Hour}
}

func TestCacheHandler(t *testing.T) {
	admin := &fakeAdmin{}
	h := NewCacheHandler(admin, logger.Nop())

	rec := httptest.NewRecorder()
	h.Clear(rec, httptest.NewRequest("DELETE", "/api/cache", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"cleared","removed":{"memory":3,"redis":3}}`, rec.Body.String())
	assert.Equal(t, 1, admin.cleared)

	rec = httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest("GET", "/api/cache", nil))
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalCount)
}

func TestParseDashboardQuery_Defaults(t *testing.T) {
	q, errs := parseDashboardQuery(map[string][]string{})
	require.Nil(t, errs)
	assert.Equal(t, "1y", q.Window)
	assert.Equal(t, 0, q.Rows)

	q, errs = parseDashboardQuery(map[string][]string{"window": {" YTD "}})
	require.Nil(t, errs)
	assert.Equal(t, "ytd", q.Window)

	_, errs = parseDashboardQuery(map[string][]string{"window": {"1w"}})
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_ONEOF", errs[0].Code)
}
