package tasks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/models"
)

func newTestStore() *Store {
	return NewStore(common.GetLogger())
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name    string
		message string
		ok      bool
		percent int
	}{
		{"found items", "found 12 items", true, 0},
		{"found single item", "found 1 item", true, 0},
		{"simple ratio", "3/10", true, 30},
		{"ratio complete", "10/10", true, 100},
		{"nested half", "1/2 -> 5/10", true, 25},
		{"nested second item", "2/2 -> 5/10", true, 75},
		{"nested done", "2/2 -> 10/10", true, 100},
		{"free text", "connecting to mailbox", false, 0},
		{"zero total", "0/0", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, ok := parseProgress(tt.message)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.percent, shape.percent())
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	store := newTestStore()

	id := store.StartTask()
	require.NotEmpty(t, id)

	state := store.GetStatus(id)
	require.NotNil(t, state)
	assert.Equal(t, models.TaskStatusRunning, state.Status)
	assert.Equal(t, 0, state.Percent)

	store.UpdateProgress(id, "found 4 items", 0)
	state = store.GetStatus(id)
	assert.Equal(t, "found 4 items", state.Message)
	assert.Equal(t, 0, state.Percent)

	store.UpdateProgress(id, "2/4", 0)
	state = store.GetStatus(id)
	assert.Equal(t, 50, state.Percent)

	store.UpdateProgress(id, "3/4 -> 1/2", 0)
	state = store.GetStatus(id)
	assert.Equal(t, 62, state.Percent)

	store.Complete(id, map[string]int{"created": 7})
	state = store.GetStatus(id)
	assert.Equal(t, models.TaskStatusDone, state.Status)
	assert.Equal(t, 100, state.Percent)
	assert.Equal(t, map[string]int{"created": 7}, state.Result)
}

func TestTaskFailIsTerminal(t *testing.T) {
	store := newTestStore()

	id := store.StartTask()
	store.Fail(id, errors.New("mailbox unreachable"))

	state := store.GetStatus(id)
	require.NotNil(t, state)
	assert.Equal(t, models.TaskStatusError, state.Status)
	assert.Equal(t, 100, state.Percent)
	assert.Equal(t, "mailbox unreachable", state.Error)

	// Updates after a terminal state are dropped
	store.UpdateProgress(id, "1/2", 0)
	store.Complete(id, "late")
	state = store.GetStatus(id)
	assert.Equal(t, models.TaskStatusError, state.Status)
	assert.Nil(t, state.Result)
}

func TestPercentHintFallback(t *testing.T) {
	store := newTestStore()

	id := store.StartTask()
	store.UpdateProgress(id, "warming up", 30)
	state := store.GetStatus(id)
	assert.Equal(t, 30, state.Percent)

	store.UpdateProgress(id, "still warming up", 250)
	state = store.GetStatus(id)
	assert.Equal(t, 100, state.Percent)

	store.UpdateProgress(id, "going backwards", -5)
	state = store.GetStatus(id)
	assert.Equal(t, 0, state.Percent)
}

func TestUnknownTask(t *testing.T) {
	store := newTestStore()

	assert.Nil(t, store.GetStatus("task_missing"))

	// No panic on updates for unknown ids
	store.UpdateProgress("task_missing", "1/2", 0)
	store.Complete("task_missing", nil)
	store.Fail("task_missing", errors.New("nope"))
}

func TestClear(t *testing.T) {
	store := newTestStore()

	id := store.StartTask()
	store.Complete(id, nil)
	require.NotNil(t, store.GetStatus(id))

	store.Clear()
	assert.Nil(t, store.GetStatus(id))
}

func TestPercentNeverDecreases(t *testing.T) {
	store := newTestStore()
	id := store.StartTask()

	// The message order a creation run emits: nested j/k updates for item i,
	// then the plain i/total once the item is done.
	sequence := []string{
		"fetching unread emails",
		"found 2 items",
		"1/2 -> 1/1",
		"1/2",
		"2/2 -> 1/2",
		"2/2 -> 2/2",
		"2/2",
	}

	previous := 0
	for _, message := range sequence {
		store.UpdateProgress(id, message, 0)
		state := store.GetStatus(id)
		require.NotNil(t, state)
		require.GreaterOrEqual(t, state.Percent, previous, "percent dropped at %q", message)
		previous = state.Percent
	}

	store.Complete(id, nil)
	assert.Equal(t, 100, store.GetStatus(id).Percent)
}

func TestFailWithNilError(t *testing.T) {
	store := newTestStore()
	id := store.StartTask()

	store.Fail(id, nil)

	state := store.GetStatus(id)
	require.NotNil(t, state)
	assert.Equal(t, models.TaskStatusError, state.Status)
	assert.Equal(t, "unknown error", state.Error)
	assert.Equal(t, 100, state.Percent)

	// The consumer is still alive for other tasks
	other := store.StartTask()
	store.UpdateProgress(other, "1/2", 0)
	assert.Equal(t, 50, store.GetStatus(other).Percent)
}
