package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/interfaces"
)

// TaskHandler serves task progress polling
type TaskHandler struct {
	tasks  interfaces.TaskStore
	logger arbor.ILogger
}

func NewTaskHandler(tasks interfaces.TaskStore, logger arbor.ILogger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// StatusHandler serves GET /api/tasks/{id}. Unknown tasks return ok=false
// with a 200 so pollers treat them as "gone", not as a transport failure.
func (h *TaskHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	taskID := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	if taskID == "" || strings.Contains(taskID, "/") {
		WriteError(w, http.StatusBadRequest, "missing task id")
		return
	}

	state := h.tasks.GetStatus(taskID)
	if state == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"ok": false,
		})
		return
	}

	payload := map[string]interface{}{
		"ok":      true,
		"status":  state.Status,
		"message": state.Message,
		"percent": state.Percent,
	}
	if state.Result != nil {
		payload["result"] = state.Result
	}
	if state.Error != "" {
		payload["error"] = state.Error
	}

	WriteJSON(w, http.StatusOK, payload)
}
