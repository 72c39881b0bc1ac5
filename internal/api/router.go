package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/macrodash/internal/api/handlers"
	"github.com/wonny/macrodash/pkg/logger"
	"github.com/wonny/macrodash/pkg/metrics"
)

// Handlers groups the endpoint handlers wired into the router
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Catalog   *handlers.CatalogHandler
	Cache     *handlers.CacheHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Dashboard endpoints
	api.HandleFunc("/dashboard", h.Dashboard.GetDashboard).Methods("GET")
	api.HandleFunc("/windows", h.Dashboard.GetWindows).Methods("GET")
	api.HandleFunc("/catalog", h.Catalog.GetCatalog).Methods("GET")

	// Cache administration
	api.HandleFunc("/cache", h.Cache.Stats).Methods("GET")
	api.HandleFunc("/cache", h.Cache.Clear).Methods("DELETE")

	// Apply middleware (바깥쪽부터: recovery → logging → metrics → timeout)
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(opts.Metrics))
	r.Use(timeoutMiddleware(opts.RequestTimeout))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "macrodash-api",
	})
}

// RouterOptions carries the cross-cutting middleware settings
type RouterOptions struct {
	Metrics        *metrics.Recorder
	RequestTimeout time.Duration
}
