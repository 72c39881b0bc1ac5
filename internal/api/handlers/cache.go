package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/macrodash/internal/cache"
	"github.com/wonny/macrodash/pkg/logger"
)

// CacheAdmin clears and reports on the result cache
type CacheAdmin interface {
	ClearCache(ctx context.Context) cache.ClearResult
	CacheStats() cache.Stats
}

// CacheHandler handles cache administration endpoints
type CacheHandler struct {
	admin  CacheAdmin
	logger *logger.Logger
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(admin CacheAdmin, log *logger.Logger) *CacheHandler {
	return &CacheHandler{admin: admin, logger: log}
}

// Clear drops every cached dashboard so the next request re-fetches
// DELETE /api/cache
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	removed := h.admin.ClearCache(r.Context())
	h.logger.WithFields(map[string]interface{}{
		"memory": removed.Memory,
		"redis":  removed.Redis,
	}).Info("Dashboard cache cleared")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "cleared",
		"removed": removed,
	})
}

// Stats returns in-memory cache statistics
// GET /api/cache
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.admin.CacheStats())
}
