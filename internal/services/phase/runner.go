package phase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
)

// BatchResult summarizes one bounded pass over eligible records
type BatchResult struct {
	Eligible  int `json:"eligible"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// BatchFunc processes one bounded batch of eligible records. Implementations
// must honor ctx cancellation between items and call report as they go.
type BatchFunc func(ctx context.Context, report func(models.WorkerProgress)) (BatchResult, error)

// Runner is a self-rescheduling worker loop for one pipeline phase. After
// each pass it schedules the next one: the normal interval after a pass that
// had work, a shorter retry interval after an empty pass so freshly produced
// upstream work is picked up quickly.
type Runner struct {
	phase         models.Phase
	batch         BatchFunc
	sched         interfaces.Scheduler
	logger        arbor.ILogger
	interval      time.Duration
	retryInterval time.Duration
	onProcessed   func(processed int)

	mu      sync.Mutex
	state   models.WorkerState
	active  bool
	pending []interfaces.CancelToken
	cancel  context.CancelFunc
}

// NewRunner creates a stopped worker loop for the given phase
func NewRunner(phase models.Phase, batch BatchFunc, sched interfaces.Scheduler, interval, retryInterval time.Duration, logger arbor.ILogger) *Runner {
	return &Runner{
		phase:         phase,
		batch:         batch,
		sched:         sched,
		logger:        logger,
		interval:      interval,
		retryInterval: retryInterval,
		state:         models.WorkerState{Interval: interval},
	}
}

// OnProcessed registers a hook invoked after every pass that processed at
// least one record. Used to chain the analysis worker off enrichment.
func (r *Runner) OnProcessed(fn func(processed int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onProcessed = fn
}

// Start activates the loop and triggers an immediate first pass.
// Calling Start on an active runner is a no-op.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return
	}
	r.active = true
	r.pending = append(r.pending, r.sched.ScheduleAfter(0, r.run))
	r.mu.Unlock()

	r.logger.Info().Str("phase", string(r.phase)).Msg("Worker started")
}

// Stop deactivates the loop, cancels any pending reschedule and signals the
// in-flight batch to abort at the next item boundary.
func (r *Runner) Stop() {
	r.mu.Lock()
	r.active = false
	pending := r.pending
	r.pending = nil
	cancel := r.cancel
	r.mu.Unlock()

	for _, token := range pending {
		token.Cancel()
	}
	if cancel != nil {
		cancel()
	}
	r.logger.Info().Str("phase", string(r.phase)).Msg("Worker stopped")
}

// RunNow triggers a single immediate pass. The pass is skipped when one is
// already running; it reschedules the loop only when the runner is active.
// The scheduled callback is tracked so Stop can cancel it while queued.
func (r *Runner) RunNow() {
	r.mu.Lock()
	r.pending = append(r.pending, r.sched.ScheduleAfter(0, r.run))
	r.mu.Unlock()
}

// State returns a snapshot of the worker state
func (r *Runner) State() models.WorkerState {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := r.state
	if r.state.CurrentProgress != nil {
		progress := *r.state.CurrentProgress
		snapshot.CurrentProgress = &progress
	}
	return snapshot
}

// run executes one pass. At most one pass per phase runs at a time.
func (r *Runner) run() {
	r.mu.Lock()
	if r.state.Running {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.state.Running = true
	r.state.CurrentProgress = nil
	r.cancel = cancel
	r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("phase", string(r.phase)).
				Str("panic", fmt.Sprintf("%v", rec)).
				Msg("PANIC RECOVERED in worker pass")
			r.finish(BatchResult{}, fmt.Errorf("panic: %v", rec))
		}
	}()

	result, err := r.batch(ctx, r.reportProgress)
	r.finish(result, err)
}

// finish records the pass outcome and schedules the next one
func (r *Runner) finish(result BatchResult, err error) {
	now := time.Now()

	r.mu.Lock()
	r.state.Running = false
	r.state.LastRunAt = &now
	if err != nil {
		r.state.LastError = err.Error()
	} else {
		r.state.LastError = ""
		r.state.LastResult = fmt.Sprintf("eligible=%d processed=%d failed=%d", result.Eligible, result.Processed, result.Failed)
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	delay := r.interval
	if err == nil && result.Eligible == 0 {
		delay = r.retryInterval
	}

	active := r.active
	// Tokens scheduled before this pass ended have fired by now
	r.pending = nil
	if active {
		r.pending = append(r.pending, r.sched.ScheduleAfter(delay, r.run))
	}
	hook := r.onProcessed
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn().Str("phase", string(r.phase)).Err(err).Msg("Worker pass failed")
	} else {
		r.logger.Info().
			Str("phase", string(r.phase)).
			Int("eligible", result.Eligible).
			Int("processed", result.Processed).
			Int("failed", result.Failed).
			Dur("next_in", delay).
			Msg("Worker pass finished")
	}

	// No chaining after Stop: a pass aborted mid-flight can still return
	// processed work, but the pipeline behind it is down.
	if active && err == nil && result.Processed > 0 && hook != nil {
		hook(result.Processed)
	}
}

// reportProgress publishes the item the pass is currently working on
func (r *Runner) reportProgress(p models.WorkerProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	progress := p
	r.state.CurrentProgress = &progress
}
