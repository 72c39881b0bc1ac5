package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/time/rate"

	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/pkg/config"
	"github.com/wonny/macrodash/pkg/httputil"
	"github.com/wonny/macrodash/pkg/logger"
)

// FRED 공개 API 제한(120 req/min)보다 보수적으로 설정
const (
	DefaultRateLimit rate.Limit = 2
	DefaultBurst                = 5
)

// missingValue FRED 는 발표되지 않은 날짜를 "." 로 표시
const missingValue = "."

// Client handles communication with the FRED observations API
// ⭐ SSOT: FRED API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new FRED client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.FREDConfig) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.Component("fred"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

// APIError is the error body FRED returns with 4xx responses
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fred error %d: %s", e.Code, e.Message)
}

type observationsResponse struct {
	ObservationStart string            `json:"observation_start"`
	Count            int               `json:"count"`
	Observations     []observationJSON `json:"observations"`
}

type observationJSON struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// FetchSeries fetches all observations of one series from start (inclusive)
func (c *Client) FetchSeries(ctx context.Context, code string, start time.Time) ([]contracts.Observation, error) {
	params := url.Values{}
	params.Set("series_id", code)
	params.Set("observation_start", start.Format(contracts.DateLayout))
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	fullURL := fmt.Sprintf("%s/series/observations?%s", c.baseURL, params.Encode())

	var resp observationsResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", code, asAPIError(err))
	}

	observations := parseObservations(resp.Observations)

	c.logger.WithFields(map[string]interface{}{
		"series": code,
		"start":  start.Format(contracts.DateLayout),
		"count":  len(observations),
	}).Debug("Fetched observations")
	return observations, nil
}

// asAPIError unwraps FRED's JSON error body from a status error
func asAPIError(err error) error {
	var se *httputil.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var apiErr APIError
	if jsonErr := json.Unmarshal([]byte(se.Body), &apiErr); jsonErr != nil || apiErr.Message == "" {
		return err
	}
	if apiErr.Code == 0 {
		apiErr.Code = se.StatusCode
	}
	return &apiErr
}

// parseObservations converts FRED rows; "." and unparseable values become null
func parseObservations(rows []observationJSON) []contracts.Observation {
	out := make([]contracts.Observation, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(contracts.DateLayout, row.Date)
		if err != nil {
			continue
		}
		out = append(out, contracts.Observation{
			Date:  date,
			Value: parseValue(row.Value),
		})
	}
	return out
}

func parseValue(s string) null.Float {
	s = strings.TrimSpace(s)
	if s == "" || s == missingValue {
		return null.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
