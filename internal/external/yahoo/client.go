package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/config"
	"github.com/wonny/macrodash/pkg/httputil"
	"github.com/wonny/macrodash/pkg/logger"
)

const (
	DefaultRateLimit rate.Limit = 5
	DefaultBurst                = 5
)

// Client handles communication with the Yahoo Finance chart API
// ⭐ SSOT: Yahoo chart API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo chart client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.YahooConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("yahoo"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// ChartError is the error object carried in chart.error
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("yahoo chart error %s: %s", e.Code, e.Description)
}

// FetchCloses fetches daily closes for each symbol in [start, end)
// 심볼이 하나든 여러 개든 결과는 symbol 키 한 단계로 평탄화
func (c *Client) FetchCloses(ctx context.Context, symbols []string, start, end time.Time) (map[string][]contracts.Observation, error) {
	var (
		mu     sync.Mutex
		result = make(map[string][]contracts.Observation, len(symbols))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		g.Go(func() error {
			obs, err := c.fetchSymbol(gctx, symbol, start, end)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", symbol, err)
			}
			mu.Lock()
			result[symbol] = obs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) fetchSymbol(ctx context.Context, symbol string, start, end time.Time) ([]contracts.Observation, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")

	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, asChartError(err)
	}
	if resp.Chart.Error != nil {
		return nil, resp.Chart.Error
	}

	flat := flattenChart(resp)
	obs, ok := flat[symbol]
	if !ok && len(flat) == 1 {
		// 요청 심볼과 meta.symbol 표기가 다른 경우 (대소문자 등)
		for _, only := range flat {
			obs = only
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(obs),
	}).Debug("Fetched closes")
	return obs, nil
}

// asChartError unwraps chart.error from a non-2xx body
func asChartError(err error) error {
	var se *httputil.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var body chartResponse
	if jsonErr := json.Unmarshal([]byte(se.Body), &body); jsonErr != nil || body.Chart.Error == nil {
		return err
	}
	return body.Chart.Error
}
