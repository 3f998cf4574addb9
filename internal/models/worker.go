package models

import (
	"encoding/json"
	"time"
)

// WorkerProgress describes the item a phase worker is currently processing
type WorkerProgress struct {
	Index  int    `json:"index"`
	Total  int    `json:"total"`
	ItemID string `json:"item_id"`
	Extra  string `json:"extra,omitempty"`
}

// WorkerState is the externally visible state of one phase worker loop.
// It is mutated only by that phase's own loop.
type WorkerState struct {
	Running         bool            `json:"running"`
	Interval        time.Duration   `json:"-"`
	LastRunAt       *time.Time      `json:"last_run_at,omitempty"`
	LastResult      string          `json:"last_result,omitempty"`
	LastError       string          `json:"last_error,omitempty"`
	CurrentProgress *WorkerProgress `json:"current_progress,omitempty"`
}

// MarshalJSON reports the interval in milliseconds on the wire.
func (w WorkerState) MarshalJSON() ([]byte, error) {
	type plain WorkerState
	return json.Marshal(struct {
		plain
		IntervalMs int64 `json:"interval_ms"`
	}{plain(w), w.Interval.Milliseconds()})
}
