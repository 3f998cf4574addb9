package phase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/models"
	"github.com/sourdin/jobsieve/internal/scheduler"
)

const (
	testInterval = 10 * time.Minute
	testRetry    = 30 * time.Second
)

func TestRunnerDelayPolicy(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	var results []BatchResult
	next := BatchResult{Eligible: 3, Processed: 3}
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		results = append(results, next)
		return next, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()

	// First pass fires immediately and finds work
	sched.Advance(0)
	require.Len(t, results, 1)

	// Work was found, so the next pass waits the full interval
	sched.Advance(testRetry)
	assert.Len(t, results, 1)
	next = BatchResult{}
	sched.Advance(testInterval - testRetry)
	require.Len(t, results, 2)

	// Empty pass, so the next one retries quickly
	sched.Advance(testRetry)
	assert.Len(t, results, 3)

	state := runner.State()
	assert.False(t, state.Running)
	assert.Equal(t, "eligible=0 processed=0 failed=0", state.LastResult)
	assert.NotNil(t, state.LastRunAt)
}

func TestRunnerReschedulesAfterFailure(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	passes := 0
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		passes++
		return BatchResult{}, errors.New("storage offline")
	}

	runner := NewRunner(models.PhaseAnalysis, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()
	sched.Advance(0)
	require.Equal(t, 1, passes)
	assert.Equal(t, "storage offline", runner.State().LastError)

	// Failed passes use the normal interval, the loop keeps going
	sched.Advance(testInterval)
	assert.Equal(t, 2, passes)
}

func TestRunnerErrorClearedOnSuccess(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	fail := true
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		if fail {
			return BatchResult{}, errors.New("transient")
		}
		return BatchResult{Eligible: 1, Processed: 1}, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()
	sched.Advance(0)
	require.Equal(t, "transient", runner.State().LastError)

	fail = false
	sched.Advance(testInterval)
	assert.Empty(t, runner.State().LastError)
	assert.Equal(t, "eligible=1 processed=1 failed=0", runner.State().LastResult)
}

func TestRunnerChainsOnProcessed(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	var next BatchResult
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		return next, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	chained := 0
	runner.OnProcessed(func(processed int) { chained++ })

	runner.Start()
	next = BatchResult{Eligible: 2, Processed: 2}
	sched.Advance(0)
	assert.Equal(t, 1, chained)

	// Empty pass does not chain
	next = BatchResult{}
	sched.Advance(testInterval)
	assert.Equal(t, 1, chained)

	// Eligible but nothing processed does not chain either
	next = BatchResult{Eligible: 2, Failed: 2}
	sched.Advance(testRetry)
	assert.Equal(t, 1, chained)
}

func TestRunnerStopCancelsPendingRun(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	passes := 0
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		passes++
		return BatchResult{Eligible: 1, Processed: 1}, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()
	sched.Advance(0)
	require.Equal(t, 1, passes)

	runner.Stop()
	sched.Advance(24 * time.Hour)
	assert.Equal(t, 1, passes)
}

func TestRunnerRunNowSinglePass(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	passes := 0
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		passes++
		return BatchResult{}, nil
	}

	// RunNow without Start executes one pass and does not start the loop
	runner := NewRunner(models.PhaseAnalysis, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.RunNow()
	sched.Advance(0)
	require.Equal(t, 1, passes)

	sched.Advance(24 * time.Hour)
	assert.Equal(t, 1, passes)
}

func TestRunnerPanicRecovered(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	passes := 0
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		passes++
		if passes == 1 {
			panic("decoder blew up")
		}
		return BatchResult{}, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()
	sched.Advance(0)

	state := runner.State()
	assert.False(t, state.Running)
	assert.Contains(t, state.LastError, "decoder blew up")

	// The loop survives the panic
	sched.Advance(testInterval)
	assert.Equal(t, 2, passes)
}

func TestRunnerStopAbortsInFlightBatch(t *testing.T) {
	sched := scheduler.NewTimerScheduler()

	started := make(chan struct{})
	release := make(chan struct{})
	var aborted bool
	var mu sync.Mutex

	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		close(started)
		<-release
		select {
		case <-ctx.Done():
			mu.Lock()
			aborted = true
			mu.Unlock()
		default:
		}
		return BatchResult{}, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("batch never started")
	}

	runner.Stop()
	close(release)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return aborted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerSingletonGuard(t *testing.T) {
	sched := scheduler.NewTimerScheduler()

	var mu sync.Mutex
	running := 0
	maxRunning := 0
	release := make(chan struct{})

	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		mu.Lock()
		running++
		if running > maxRunning {
			maxRunning = running
		}
		mu.Unlock()

		<-release

		mu.Lock()
		running--
		mu.Unlock()
		return BatchResult{}, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.Start()
	for i := 0; i < 5; i++ {
		runner.RunNow()
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return running == 1
	}, 2*time.Second, 10*time.Millisecond)

	close(release)
	runner.Stop()

	mu.Lock()
	assert.Equal(t, 1, maxRunning)
	mu.Unlock()
}

func TestRunnerProgressVisible(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		report(models.WorkerProgress{Index: 1, Total: 2, ItemID: "hellowork-0011223344556677"})
		return BatchResult{Eligible: 2, Processed: 2}, nil
	}

	var seen *models.WorkerProgress
	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())

	// Capture progress during the pass via the chaining hook
	runner.OnProcessed(func(int) {
		state := runner.State()
		seen = state.CurrentProgress
	})

	runner.Start()
	sched.Advance(0)

	require.NotNil(t, seen)
	assert.Equal(t, 1, seen.Index)
	assert.Equal(t, "hellowork-0011223344556677", seen.ItemID)
}

func TestRunnerStopCancelsQueuedRunNow(t *testing.T) {
	sched := scheduler.NewManualScheduler()

	passes := 0
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		passes++
		return BatchResult{}, nil
	}

	runner := NewRunner(models.PhaseAnalysis, batch, sched, testInterval, testRetry, common.GetLogger())
	runner.RunNow()
	runner.Stop()

	sched.Advance(0)
	assert.Equal(t, 0, passes)
}

func TestRunnerStopSuppressesChainingMidPass(t *testing.T) {
	sched := scheduler.NewTimerScheduler()

	started := make(chan struct{})
	release := make(chan struct{})
	batch := func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error) {
		close(started)
		<-release
		// A pass interrupted between items still reports what it did
		return BatchResult{Eligible: 3, Processed: 1}, nil
	}

	runner := NewRunner(models.PhaseEnrichment, batch, sched, testInterval, testRetry, common.GetLogger())
	chained := 0
	var mu sync.Mutex
	runner.OnProcessed(func(int) {
		mu.Lock()
		chained++
		mu.Unlock()
	})

	runner.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("batch never started")
	}

	runner.Stop()
	close(release)

	assert.Eventually(t, func() bool {
		return !runner.State().Running
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, chained)
	mu.Unlock()
}
