package tasks

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/common"
	"github.com/noah-isme/tour-inventory/internal/obs"
)

// Refresher rebuilds the catalog snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// Warmer precomputes pool reports and returns how many were built.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// Processor handles catalog jobs inside the worker.
type Processor struct {
	Catalog Refresher
	Reports Warmer
	Queue   Enqueuer
	Log     zerolog.Logger
}

// Register binds the processor to mux.
func (p *Processor) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeCatalogRefresh, p.HandleCatalogRefresh)
	mux.HandleFunc(TypePoolReportWarm, p.HandlePoolReportWarm)
}

// HandleCatalogRefresh rebuilds the snapshot and schedules report warmup.
func (p *Processor) HandleCatalogRefresh(ctx context.Context, t *asynq.Task) error {
	payload, err := decodeRefresh(t)
	if err != nil {
		recordTask(TypeCatalogRefresh, "invalid")
		return err
	}
	snap, err := p.Catalog.Refresh(ctx)
	if err != nil {
		recordTask(TypeCatalogRefresh, "error")
		return err
	}
	p.Log.Info().
		Str("reason", payload.Reason).
		Time("loaded_at", snap.LoadedAt()).
		Msg("catalog refresh task done")
	recordTask(TypeCatalogRefresh, "ok")

	if p.Queue != nil && p.Reports != nil {
		if _, err := p.Queue.EnqueueContext(ctx, NewPoolReportWarmTask()); err != nil {
			p.Log.Warn().Err(err).Msg("enqueue pool report warmup")
		}
	}
	return nil
}

// HandlePoolReportWarm precomputes the pool profit overview.
func (p *Processor) HandlePoolReportWarm(ctx context.Context, _ *asynq.Task) error {
	if p.Reports == nil {
		return nil
	}
	n, err := p.Reports.Warm(ctx)
	if err != nil {
		recordTask(TypePoolReportWarm, "error")
		return err
	}
	recordTask(TypePoolReportWarm, "ok")
	p.Log.Debug().Int("pools", n).Msg("pool reports warmed")
	return nil
}

// AdminHandler exposes operator endpoints that enqueue jobs.
type AdminHandler struct {
	Queue Enqueuer
	Now   func() time.Time
}

// RefreshCatalog handles POST /api/v1/admin/catalog/refresh.
func (h *AdminHandler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if h.Queue == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "task queue not configured", nil)
		return
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	reason := r.URL.Query().Get("reason")
	if reason == "" {
		reason = "admin"
	}
	task, err := NewCatalogRefreshTask(reason, now)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	info, err := h.Queue.EnqueueContext(r.Context(), task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			common.Data(w, http.StatusAccepted, map[string]any{"status": "already_queued"}, nil)
			return
		}
		common.JSONError(w, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "could not enqueue refresh", nil)
		return
	}
	common.Data(w, http.StatusAccepted, map[string]any{"status": "queued", "taskId": info.ID, "queue": info.Queue}, nil)
}

func recordTask(kind, result string) {
	if obs.TasksProcessedTotal != nil {
		obs.TasksProcessedTotal.WithLabelValues(kind, result).Inc()
	}
}
