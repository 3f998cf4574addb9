package interfaces

import "github.com/sourdin/jobsieve/internal/models"

// TaskStore tracks long-running task state for external polling. The
// in-memory implementation is single-process; a multi-process deployment can
// back this interface with a shared store.
type TaskStore interface {
	// StartTask creates a new running task and returns its ID
	StartTask() string
	// UpdateProgress records a progress message. Messages following the
	// structured vocabulary ("found N items", "i/total",
	// "i/total -> j/k") drive the computed percent; free-form messages
	// fall back to percentHint, clamped to [0,100].
	UpdateProgress(taskID, message string, percentHint int)
	// Complete marks the task done with a result payload
	Complete(taskID string, result interface{})
	// Fail marks the task errored
	Fail(taskID string, err error)
	// GetStatus returns the task state, or nil when unknown
	GetStatus(taskID string) *models.TaskState
	// Clear removes all task state
	Clear()
}
