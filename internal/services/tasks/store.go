package tasks

import (
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/models"
)

// event is one progress or completion update for a task. Events are
// applied by a single consumer per task so ordering is preserved even
// when a worker reports from multiple goroutines.
type event struct {
	kind        eventKind
	message     string
	percentHint int
	result      interface{}
	err         error
	applied     chan struct{}
}

type eventKind int

const (
	eventProgress eventKind = iota
	eventComplete
	eventFail
)

type taskEntry struct {
	state  models.TaskState
	events chan event
	done   chan struct{}
}

// Store tracks the state of background runs for polling clients.
// States live in memory and survive until Clear or process restart.
type Store struct {
	mu     sync.RWMutex
	tasks  map[string]*taskEntry
	logger arbor.ILogger
}

// NewStore creates an empty task store
func NewStore(logger arbor.ILogger) *Store {
	return &Store{
		tasks:  make(map[string]*taskEntry),
		logger: logger,
	}
}

// StartTask registers a new running task and returns its identifier
func (s *Store) StartTask() string {
	id := common.NewTaskID()

	entry := &taskEntry{
		state: models.TaskState{
			ID:        id,
			Status:    models.TaskStatusRunning,
			UpdatedAt: time.Now(),
		},
		events: make(chan event, 64),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.tasks[id] = entry
	s.mu.Unlock()

	go s.consume(entry)

	s.logger.Debug().Str("task_id", id).Msg("Task started")
	return id
}

// consume applies events to the task state in arrival order
func (s *Store) consume(entry *taskEntry) {
	for ev := range entry.events {
		s.apply(entry, ev)
		terminal := ev.kind != eventProgress
		if terminal {
			close(entry.done)
		}
		close(ev.applied)
		if terminal {
			return
		}
	}
}

func (s *Store) apply(entry *taskEntry, ev event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.kind {
	case eventProgress:
		entry.state.Message = ev.message
		if shape, ok := parseProgress(ev.message); ok {
			entry.state.Percent = shape.percent()
		} else {
			entry.state.Percent = clampPercent(ev.percentHint)
		}
	case eventComplete:
		entry.state.Status = models.TaskStatusDone
		entry.state.Percent = 100
		entry.state.Result = ev.result
	case eventFail:
		entry.state.Status = models.TaskStatusError
		entry.state.Percent = 100
		// A nil error must not kill the consumer goroutine
		message := "unknown error"
		if ev.err != nil {
			message = ev.err.Error()
		}
		entry.state.Error = message
		entry.state.Message = message
	}
	entry.state.UpdatedAt = time.Now()
}

// send enqueues an event and waits for it to be applied. Events for
// unknown or already-terminal tasks are dropped.
func (s *Store) send(taskID string, ev event) {
	s.mu.RLock()
	entry, ok := s.tasks[taskID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	ev.applied = make(chan struct{})

	select {
	case <-entry.done:
		return
	case entry.events <- ev:
	}

	select {
	case <-ev.applied:
	case <-entry.done:
	}
}

// UpdateProgress records a progress message for a running task. Structured
// messages ("found N items", "i/total", "i/total -> j/k") drive the percent
// computation; anything else falls back to percentHint.
func (s *Store) UpdateProgress(taskID, message string, percentHint int) {
	s.send(taskID, event{kind: eventProgress, message: message, percentHint: percentHint})
}

// Complete marks a task done with its result payload
func (s *Store) Complete(taskID string, result interface{}) {
	s.send(taskID, event{kind: eventComplete, result: result})
	s.logger.Debug().Str("task_id", taskID).Msg("Task completed")
}

// Fail marks a task failed with a human-readable error
func (s *Store) Fail(taskID string, err error) {
	s.send(taskID, event{kind: eventFail, err: err})
	s.logger.Warn().Str("task_id", taskID).Err(err).Msg("Task failed")
}

// GetStatus returns a snapshot of the task state, or nil when unknown
func (s *Store) GetStatus(taskID string) *models.TaskState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.tasks[taskID]
	if !ok {
		return nil
	}
	snapshot := entry.state
	return &snapshot
}

// Clear removes all task states
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]*taskEntry)
}
