package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/noah-isme/tour-inventory/internal/common"
)

// Handler exposes read-only catalog endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Rates handles GET /api/v1/catalog/rates.
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	listPage(h, w, r, h.serviceOrNil().ListRates)
}

// Offers handles GET /api/v1/catalog/offers.
func (h *Handler) Offers(w http.ResponseWriter, r *http.Request) {
	listPage(h, w, r, h.serviceOrNil().ListOffers)
}

// Policies handles GET /api/v1/catalog/policies.
func (h *Handler) Policies(w http.ResponseWriter, r *http.Request) {
	listPage(h, w, r, h.serviceOrNil().ListPolicies)
}

// Pools handles GET /api/v1/catalog/pools.
func (h *Handler) Pools(w http.ResponseWriter, r *http.Request) {
	listPage(h, w, r, h.serviceOrNil().ListPools)
}

func (h *Handler) serviceOrNil() *Service {
	if h == nil {
		return nil
	}
	return h.service
}

func listPage[T any](h *Handler, w http.ResponseWriter, r *http.Request, list func(context.Context, int, int) (Page[T], error)) {
	if h.serviceOrNil() == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	page, limit := common.ParsePagination(r, 0)
	result, err := list(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	common.Paged(w, result.Items, common.NewPagination(result.Page, result.Limit, result.Total))
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		common.WriteAppError(w, appErr)
	case errors.Is(err, ErrSnapshotUnavailable):
		common.JSONError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog snapshot unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
