package models

import "time"

// TaskStatus represents the status of a tracked task run. Transitions are
// monotonic: running -> done or running -> error, terminal once reached.
type TaskStatus string

const (
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusError   TaskStatus = "error"
)

// TaskState tracks the progress of one bounded phase run for external polling.
type TaskState struct {
	ID        string      `json:"id"`
	Status    TaskStatus  `json:"status"`
	Message   string      `json:"message"`
	Percent   int         `json:"percent"`
	Result    interface{} `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Terminal reports whether the task has reached a final state
func (t *TaskState) Terminal() bool {
	return t.Status == TaskStatusDone || t.Status == TaskStatusError
}
