package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes pipeline, provider, cache and HTTP metrics.
// All methods are safe on a nil *Recorder so callers can run without metrics.
type Recorder struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	pipelineRuns     *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	netLiquidity     prometheus.Gauge
	rateSpread       prometheus.Gauge
	fundingStressed  prometheus.Gauge
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
}

// New creates a recorder with its own registry (Go and process collectors included).
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		providerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrodash_provider_requests_total",
				Help: "Provider series fetches by outcome",
			},
			[]string{"provider", "series", "outcome"},
		),
		providerLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrodash_provider_fetch_duration_seconds",
				Help:    "Duration of a single provider series fetch",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider"},
		),
		pipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrodash_pipeline_runs_total",
				Help: "Fetch-align-derive passes by outcome",
			},
			[]string{"outcome"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrodash_cache_lookups_total",
				Help: "Result cache lookups by layer and result",
			},
			[]string{"layer", "result"},
		),
		netLiquidity: factory.NewGauge(prometheus.GaugeOpts{
			Name: "macrodash_net_liquidity_billions",
			Help: "Latest Net Liquidity in billions USD",
		}),
		rateSpread: factory.NewGauge(prometheus.GaugeOpts{
			Name: "macrodash_rate_spread_pp",
			Help: "Latest SOFR-EFFR spread in percentage points",
		}),
		fundingStressed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "macrodash_funding_stressed",
			Help: "1 when the latest rate spread is classified stressed",
		}),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrodash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrodash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route", "method"},
		),
	}
}

// RecordProviderFetch records one provider series fetch.
func (r *Recorder) RecordProviderFetch(provider, series string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.providerRequests.WithLabelValues(provider, series, outcome).Inc()
	r.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordPipelineRun records a pipeline pass outcome: ok, empty, error.
func (r *Recorder) RecordPipelineRun(outcome string) {
	if r == nil {
		return
	}
	r.pipelineRuns.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup records a cache hit or miss for a layer (memory, redis).
func (r *Recorder) RecordCacheLookup(layer string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(layer, result).Inc()
}

// RecordHeadline publishes the latest derived indicators.
func (r *Recorder) RecordHeadline(netLiquidity, rateSpread float64, stressed bool) {
	if r == nil {
		return
	}
	r.netLiquidity.Set(netLiquidity)
	r.rateSpread.Set(rateSpread)
	if stressed {
		r.fundingStressed.Set(1)
	} else {
		r.fundingStressed.Set(0)
	}
}

// RecordHTTPRequest records an inbound API request.
func (r *Recorder) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}

// Registry exposes the underlying registry (tests, custom collectors).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
