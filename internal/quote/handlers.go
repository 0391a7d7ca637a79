package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/common"
	"github.com/noah-isme/tour-inventory/internal/obs"
)

// Handler exposes the quote endpoint.
type Handler struct {
	Svc *Service
}

// Create handles POST /api/v1/quotes. The sell channel may also be supplied
// through the X-Sales-Channel header when the body omits it.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		h.writeError(w, common.BadRequest("invalid payload", err, nil))
		return
	}
	if strings.TrimSpace(payload.Channel) == "" {
		payload.Channel = obs.SalesChannelFromContext(r.Context())
	}
	if payload.Channel == "" {
		payload.Channel = r.Header.Get(obs.ChannelHeader)
	}
	out, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, out, nil)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		common.WriteAppError(w, appErr)
	case errors.Is(err, catalog.ErrSnapshotUnavailable):
		common.JSONError(w, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "catalog snapshot unavailable", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}
