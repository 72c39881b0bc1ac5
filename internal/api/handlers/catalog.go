package handlers

import (
	"net/http"

	"github.com/wonny/macrodash/internal/catalog"
)

// CatalogHandler serves the series catalog and formula table
type CatalogHandler struct {
	catalog *catalog.Catalog
	hash    string
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog, hash string) *CatalogHandler {
	return &CatalogHandler{catalog: cat, hash: hash}
}

// CatalogResponse is the body of GET /api/catalog
type CatalogResponse struct {
	Hash     string            `json:"hash"`
	Columns  []string          `json:"columns"`
	Series   []catalog.Series  `json:"series"`
	Formulas []catalog.Formula `json:"formulas"`
}

// GetCatalog returns the catalog in use
// GET /api/catalog
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CatalogResponse{
		Hash:     h.hash,
		Columns:  h.catalog.Columns(),
		Series:   h.catalog.Series,
		Formulas: h.catalog.Formulas,
	})
}
