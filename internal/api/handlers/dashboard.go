package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/macrodash/internal/contracts"
	"github.com/wonny/macrodash/internal/lookback"
	"github.com/wonny/macrodash/pkg/logger"
)

// DashboardHandler handles dashboard API endpoints
// ⭐ SSOT: 대시보드 API 핸들러는 이 구조체에서만
type DashboardHandler struct {
	builder  contracts.DashboardBuilder
	resolver *lookback.Resolver
	logger   *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(builder contracts.DashboardBuilder, resolver *lookback.Resolver, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		builder:  builder,
		resolver: resolver,
		logger:   log,
	}
}

// GetDashboard returns the aligned + derived table and the headline summary
// GET /api/dashboard?window=1y | ?start=YYYY-MM-DD [&rows=N]
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, verrs := parseDashboardQuery(r.URL.Query())
	if verrs != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrors{Error: "invalid query", Errors: verrs})
		return
	}

	start, err := h.resolver.Resolve(q.Window, q.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.builder.Build(r.Context(), start)
	if err != nil {
		h.respondBuildError(w, err)
		return
	}

	if q.Rows > 0 && q.Rows < d.Table.Len() {
		// 캐시된 결과는 공유되므로 복사본을 잘라서 응답
		trimmed := *d
		trimmed.Table.Rows = d.Table.Tail(q.Rows)
		d = &trimmed
	}

	respondJSON(w, http.StatusOK, d)
}

// respondBuildError separates "still loading" from "fetch failed"
func (h *DashboardHandler) respondBuildError(w http.ResponseWriter, err error) {
	log := h.logger.WithError(err)

	switch {
	case errors.Is(err, contracts.ErrEmptyResult):
		log.Info("Dashboard data not ready")
		respondJSON(w, http.StatusAccepted, StatusResponse{
			Status:  "loading",
			Message: "market data for this window is not available yet",
		})
	case errors.Is(err, contracts.ErrProviderUnavailable):
		log.Warn("Dashboard fetch failed")
		resp := StatusResponse{
			Status: "failed",
			Error:  contracts.ErrProviderUnavailable.Error(),
		}
		var pe *contracts.ProviderError
		if errors.As(err, &pe) {
			resp.Provider = string(pe.Provider)
			resp.Series = pe.Series
		}
		respondJSON(w, http.StatusBadGateway, resp)
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("Dashboard request timed out")
		respondJSON(w, http.StatusGatewayTimeout, StatusResponse{
			Status: "failed",
			Error:  "request timed out",
		})
	case errors.Is(err, context.Canceled):
		// 클라이언트가 연결을 끊음
		log.Debug("Dashboard request cancelled")
	default:
		log.Error("Dashboard build failed")
		respondJSON(w, http.StatusInternalServerError, StatusResponse{
			Status: "error",
			Error:  "internal error",
		})
	}
}

// GetWindows returns the lookback presets with their resolved start dates
// GET /api/windows
func (h *DashboardHandler) GetWindows(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"default": lookback.DefaultWindow,
		"windows": h.resolver.Windows(),
	})
}
