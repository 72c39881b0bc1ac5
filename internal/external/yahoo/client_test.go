package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/macrodash/pkg/config"
	"github.com/wonny/macrodash/pkg/httputil"
	"github.com/wonny/macrodash/pkg/logger"
)

// 2024-01-02 09:30 America/New_York
const jan2Open = 1704205800

const spyBody = `{"chart":{"result":[{"meta":{"symbol":"SPY","gmtoffset":-18000,"exchangeTimezoneName":"America/New_York"},
"timestamp":[1704205800,1704292200,1704378600],
"indicators":{"quote":[{"close":[472.65,null,467.28]}]}}],"error":null}}`

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{Yahoo: config.YahooConfig{BaseURL: baseURL}}
	hc := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(hc, logger.Nop(), cfg.Yahoo)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLocalDay(t *testing.T) {
	tests := []struct {
		name   string
		ts     int64
		offset int64
		want   time.Time
	}{
		{"new york open", jan2Open, -18000, day(2024, 1, 2)},
		// 16:00 NY = 21:00 UTC, still the 2nd locally
		{"new york close", jan2Open + 6*3600 + 1800, -18000, day(2024, 1, 2)},
		// 2024-01-02 20:00 NY is 01:00 UTC on the 3rd
		{"evening crosses utc midnight", jan2Open + 10*3600 + 1800, -18000, day(2024, 1, 2)},
		{"utc exchange", 1704153600, 0, day(2024, 1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, localDay(tt.ts, tt.offset))
		})
	}
}

func TestFlattenChart_SingleResult(t *testing.T) {
	var resp chartResponse
	require.NoError(t, json.Unmarshal([]byte(spyBody), &resp))

	flat := flattenChart(resp)
	require.Contains(t, flat, "SPY")

	obs := flat["SPY"]
	require.Len(t, obs, 3)
	assert.Equal(t, day(2024, 1, 2), obs[0].Date)
	assert.Equal(t, 472.65, obs[0].Value.Float64)
	assert.False(t, obs[1].Value.Valid, "null close stays null")
	assert.Equal(t, day(2024, 1, 4), obs[2].Date)
}

func TestFlattenChart_MultipleResults(t *testing.T) {
	body := `{"chart":{"result":[
	{"meta":{"symbol":"SPY","gmtoffset":-18000},"timestamp":[1704205800],"indicators":{"quote":[{"close":[472.65]}]}},
	{"meta":{"symbol":"QQQ","gmtoffset":-18000},"timestamp":[1704205800],"indicators":{"quote":[{"close":[402.0]}]}}
	],"error":null}}`
	var resp chartResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	flat := flattenChart(resp)
	assert.Len(t, flat, 2)
	assert.Equal(t, 402.0, flat["QQQ"][0].Value.Float64)
}

func TestFlattenChart_ShortCloseArray(t *testing.T) {
	body := `{"chart":{"result":[{"meta":{"symbol":"^TNX","gmtoffset":-18000},
	"timestamp":[1704205800,1704292200],"indicators":{"quote":[{"close":[3.95]}]}}]}}`
	var resp chartResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	obs := flattenChart(resp)["^TNX"]
	require.Len(t, obs, 2)
	assert.True(t, obs[0].Value.Valid)
	assert.False(t, obs[1].Value.Valid)
}

func TestFetchCloses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1704067200", r.URL.Query().Get("period1"))

		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		body := strings.ReplaceAll(spyBody, `"symbol":"SPY"`, `"symbol":"`+symbol+`"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchCloses(context.Background(),
		[]string{"SPY", "QQQ", "^TNX"}, day(2024, 1, 1), day(2024, 1, 5))
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Len(t, got, 3)
	assert.Len(t, got["^TNX"], 3)
}

func TestFetchCloses_SymbolCaseMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(spyBody))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchCloses(context.Background(), []string{"spy"}, day(2024, 1, 1), day(2024, 1, 5))
	require.NoError(t, err)
	assert.Len(t, got["spy"], 3)
}

func TestFetchCloses_ChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchCloses(context.Background(), []string{"NOPE"}, day(2024, 1, 1), day(2024, 1, 5))
	require.Error(t, err)

	var ce *ChartError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Not Found", ce.Code)
	assert.Contains(t, err.Error(), "NOPE")
}

func TestFetchCloses_EmptyWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"SPY","gmtoffset":-18000},"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).FetchCloses(context.Background(), []string{"SPY"}, day(2024, 1, 1), day(2024, 1, 2))
	require.NoError(t, err)
	assert.Empty(t, got["SPY"])
}
