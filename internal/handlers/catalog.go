package handlers

import (
	"net/http"

	"github.com/villaingsk/woo-protect/internal/middleware"
	"github.com/villaingsk/woo-protect/internal/service"

	"go.uber.org/zap"
)

// CatalogHandler serves the filtered category listing and the cache
// exclusion list.
type CatalogHandler struct {
	Access *service.AccessService
	Logger *zap.SugaredLogger
}

func NewCatalogHandler(access *service.AccessService, logger *zap.SugaredLogger) *CatalogHandler {
	return &CatalogHandler{Access: access, Logger: logger}
}

// List returns the catalog minus the categories hidden from this visitor.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	cats, err := h.Access.VisibleCategories(r.Context(), sid)
	if err != nil {
		h.Logger.Errorw("List: failed to load catalog", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// the listing depends on the visitor's unlocks
	middleware.NoStore(w)
	writeJSON(w, http.StatusOK, cats)
}

// CacheExclusions returns the URL paths of protected categories for
// registration with downstream caching layers.
func (h *CatalogHandler) CacheExclusions(w http.ResponseWriter, r *http.Request) {
	paths, err := h.Access.CacheExclusionPaths(r.Context())
	if err != nil {
		h.Logger.Errorw("CacheExclusions: failed to build list", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"paths": paths})
}
