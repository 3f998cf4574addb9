package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/extract"
	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
	"github.com/sourdin/jobsieve/internal/scheduler"
	"github.com/sourdin/jobsieve/internal/services/creation"
	"github.com/sourdin/jobsieve/internal/services/orchestrator"
	"github.com/sourdin/jobsieve/internal/services/phase"
	"github.com/sourdin/jobsieve/internal/services/tasks"
	"github.com/sourdin/jobsieve/internal/storage/badger"
)

type emptyMailReader struct{}

func (emptyMailReader) FetchUnread(ctx context.Context) ([]interfaces.Email, error) {
	return nil, nil
}
func (emptyMailReader) MarkRead(ctx context.Context, id string) error { return nil }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAPIHandler().HealthHandler(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestTaskStatusHandler(t *testing.T) {
	logger := common.GetLogger()
	store := tasks.NewStore(logger)
	handler := NewTaskHandler(store, logger)

	taskID := store.StartTask()
	store.UpdateProgress(taskID, "2/4", 0)

	rec := httptest.NewRecorder()
	handler.StatusHandler(rec, httptest.NewRequest("GET", "/api/tasks/"+taskID, nil))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "2/4", body["message"])
	assert.Equal(t, float64(50), body["percent"])

	store.Fail(taskID, errors.New("mailbox unreachable"))
	rec = httptest.NewRecorder()
	handler.StatusHandler(rec, httptest.NewRequest("GET", "/api/tasks/"+taskID, nil))

	body = decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, float64(100), body["percent"])
	assert.Equal(t, "mailbox unreachable", body["error"])
}

func TestTaskStatusHandlerUnknownTask(t *testing.T) {
	logger := common.GetLogger()
	handler := NewTaskHandler(tasks.NewStore(logger), logger)

	rec := httptest.NewRecorder()
	handler.StatusHandler(rec, httptest.NewRequest("GET", "/api/tasks/task_missing", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["ok"])
	assert.NotContains(t, body, "status")
}

func TestSourcesHandler(t *testing.T) {
	logger := common.GetLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	handler := NewSourceHandler(storage.SourceStorage(), logger)

	payload, _ := json.Marshal(models.Source{
		SenderAddress:   "alertes@hellowork.com",
		ProviderName:    models.ProviderHelloWork,
		CreationEnabled: true,
	})
	rec := httptest.NewRecorder()
	handler.SourcesHandler(rec, httptest.NewRequest("PUT", "/api/sources", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.SourcesHandler(rec, httptest.NewRequest("GET", "/api/sources", nil))
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestSourcesHandlerRejectsUnknownCreation(t *testing.T) {
	logger := common.GetLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	handler := NewSourceHandler(storage.SourceStorage(), logger)

	payload, _ := json.Marshal(models.Source{
		SenderAddress:   "mystery@sender.example",
		ProviderName:    models.ProviderUnknown,
		CreationEnabled: true,
	})
	rec := httptest.NewRecorder()
	handler.SourcesHandler(rec, httptest.NewRequest("PUT", "/api/sources", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkerHandler(t *testing.T) {
	logger := common.GetLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	taskStore := tasks.NewStore(logger)
	creationSvc := creation.NewService(emptyMailReader{}, storage, taskStore, extract.NewExtractor(logger), logger)

	sched := scheduler.NewManualScheduler()
	noop := func(ctx context.Context, report func(models.WorkerProgress)) (phase.BatchResult, error) {
		return phase.BatchResult{}, nil
	}
	coordinator := orchestrator.NewCoordinator(creationSvc,
		phase.NewRunner(models.PhaseEnrichment, noop, sched, time.Minute, time.Second, logger),
		phase.NewRunner(models.PhaseAnalysis, noop, sched, time.Minute, time.Second, logger),
		"", logger)

	handler := NewWorkerHandler(coordinator, logger)

	rec := httptest.NewRecorder()
	handler.StatusHandler(rec, httptest.NewRequest("GET", "/api/status", nil))
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["running"])
	assert.Contains(t, body, "enrichment")
	assert.Contains(t, body, "analysis")

	rec = httptest.NewRecorder()
	handler.RunCreationHandler(rec, httptest.NewRequest("POST", "/api/run/creation", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	taskID := decodeBody(t, rec)["task_id"].(string)
	assert.NotEmpty(t, taskID)

	require.Eventually(t, func() bool {
		state := taskStore.GetStatus(taskID)
		return state != nil && state.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
}
