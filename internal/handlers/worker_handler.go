package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/services/orchestrator"
)

// WorkerHandler exposes pipeline status and manual triggers
type WorkerHandler struct {
	coordinator *orchestrator.Coordinator
	logger      arbor.ILogger
}

func NewWorkerHandler(coordinator *orchestrator.Coordinator, logger arbor.ILogger) *WorkerHandler {
	return &WorkerHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// StatusHandler serves GET /api/status
func (h *WorkerHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, h.coordinator.Status())
}

// RunCreationHandler serves POST /api/run/creation. Returns the task ID to
// poll; a 409 when a run is already in progress.
func (h *WorkerHandler) RunCreationHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	// The run outlives the HTTP request, so it must not inherit its context
	taskID, err := h.coordinator.RunCreation(context.Background())
	if err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}

	h.logger.Info().Str("task_id", taskID).Msg("Creation run triggered")
	WriteJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
	})
}
