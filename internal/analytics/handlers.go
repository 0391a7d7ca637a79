package analytics

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/common"
)

// Handler exposes pool reporting endpoints.
type Handler struct {
	Svc *Service
}

// PoolProfit handles GET /api/v1/pools/{poolId}/profit.
func (h *Handler) PoolProfit(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	poolID, ok := poolParam(w, r)
	if !ok {
		return
	}
	summary, err := h.Svc.PoolProfit(r.Context(), poolID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, summary, map[string]any{"generatedAt": h.Svc.now()})
}

// CheapestSupplier handles GET /api/v1/pools/{poolId}/cheapest-supplier.
func (h *Handler) CheapestSupplier(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	poolID, ok := poolParam(w, r)
	if !ok {
		return
	}
	choice, err := h.Svc.CheapestSupplier(r.Context(), poolID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, choice, nil)
}

// Overview handles GET /api/v1/pools/profit.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_NOT_CONFIGURED", "analytics service not configured", nil)
		return
	}
	rows, err := h.Svc.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rows, map[string]any{"generatedAt": h.Svc.now()})
}

func poolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	poolID := strings.TrimSpace(chi.URLParam(r, "poolId"))
	if poolID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "pool id is required", nil)
		return "", false
	}
	return poolID, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPoolNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "pool not found", nil)
	case errors.Is(err, ErrEmptyPool):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "pool has no allocations", nil)
	case errors.Is(err, catalog.ErrSnapshotUnavailable):
		common.JSONError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog snapshot unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "ANALYTICS_ERROR", err.Error(), nil)
	}
}
