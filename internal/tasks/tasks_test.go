package tasks_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tour-inventory/internal/catalog"
	"github.com/noah-isme/tour-inventory/internal/tasks"
)

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: tasks.QueueCatalog, Type: task.Type()}, nil
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*catalog.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return catalog.NewSnapshot(catalog.Data{}, time.Unix(1, 0))
}

type fakeWarmer struct{ calls int }

func (f *fakeWarmer) Warm(context.Context) (int, error) {
	f.calls++
	return 3, nil
}

func TestRefreshTaskChainsWarmup(t *testing.T) {
	queue := &fakeQueue{}
	refresher := &fakeRefresher{}
	warmer := &fakeWarmer{}
	p := &tasks.Processor{Catalog: refresher, Reports: warmer, Queue: queue, Log: zerolog.Nop()}
	mux := asynq.NewServeMux()
	p.Register(mux)

	task, err := tasks.NewCatalogRefreshTask("test", time.Now())
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	require.Equal(t, 1, refresher.calls)
	require.Len(t, queue.tasks, 1)
	require.Equal(t, tasks.TypePoolReportWarm, queue.tasks[0].Type())

	require.NoError(t, mux.ProcessTask(context.Background(), queue.tasks[0]))
	require.Equal(t, 1, warmer.calls)
}

func TestRefreshTaskFailurePropagates(t *testing.T) {
	boom := errors.New("db down")
	p := &tasks.Processor{Catalog: &fakeRefresher{err: boom}, Log: zerolog.Nop()}
	task, err := tasks.NewCatalogRefreshTask("test", time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, p.HandleCatalogRefresh(context.Background(), task), boom)
}

func TestRefreshTaskRejectsGarbagePayload(t *testing.T) {
	p := &tasks.Processor{Catalog: &fakeRefresher{}, Log: zerolog.Nop()}
	err := p.HandleCatalogRefresh(context.Background(), asynq.NewTask(tasks.TypeCatalogRefresh, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAdminRefreshEnqueues(t *testing.T) {
	queue := &fakeQueue{}
	h := &tasks.AdminHandler{Queue: queue}
	rr := httptest.NewRecorder()
	h.RefreshCatalog(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/refresh?reason=price-update", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Contains(t, rr.Body.String(), `"taskId":"task-1"`)
	require.Len(t, queue.tasks, 1)
	require.Contains(t, string(queue.tasks[0].Payload()), "price-update")
}

func TestAdminRefreshDuplicate(t *testing.T) {
	h := &tasks.AdminHandler{Queue: &fakeQueue{err: asynq.ErrDuplicateTask}}
	rr := httptest.NewRecorder()
	h.RefreshCatalog(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/refresh", nil))
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Contains(t, rr.Body.String(), "already_queued")

	h = &tasks.AdminHandler{Queue: &fakeQueue{err: errors.New("redis down")}}
	rr = httptest.NewRecorder()
	h.RefreshCatalog(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/refresh", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLoggerSatisfiesAsynq(t *testing.T) {
	var buf bytes.Buffer
	var log asynq.Logger = tasks.Logger{L: zerolog.New(&buf)}
	log.Warn("lease expired for ", "task-1")
	require.Contains(t, buf.String(), `"level":"warn"`)
	require.Contains(t, buf.String(), "lease expired for task-1")
}
