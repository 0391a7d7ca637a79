// Package tasks defines the background jobs that keep the catalog snapshot
// and pool reports fresh.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

// Task type names.
const (
	TypeCatalogRefresh = "catalog:refresh"
	TypePoolReportWarm = "analytics:pool_report_warm"
)

// QueueCatalog is the asynq queue catalog jobs run on.
const QueueCatalog = "catalog"

// RefreshPayload describes why a refresh was requested.
type RefreshPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewCatalogRefreshTask builds a refresh job. Duplicate requests within the
// uniqueness window collapse into one.
func NewCatalogRefreshTask(reason string, at time.Time) (*asynq.Task, error) {
	payload, err := json.Marshal(RefreshPayload{Reason: reason, RequestedAt: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("encode refresh payload: %w", err)
	}
	return asynq.NewTask(TypeCatalogRefresh, payload,
		asynq.Queue(QueueCatalog),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(30*time.Second),
	), nil
}

// NewPoolReportWarmTask builds a job that precomputes pool reports.
func NewPoolReportWarmTask() *asynq.Task {
	return asynq.NewTask(TypePoolReportWarm, nil,
		asynq.Queue(QueueCatalog),
		asynq.MaxRetry(2),
		asynq.Timeout(time.Minute),
	)
}

func decodeRefresh(t *asynq.Task) (RefreshPayload, error) {
	var p RefreshPayload
	if len(t.Payload()) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode refresh payload: %w: %w", err, asynq.SkipRetry)
	}
	return p, nil
}
