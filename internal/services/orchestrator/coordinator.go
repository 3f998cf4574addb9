// -----------------------------------------------------------------------
// Orchestration coordinator - owns the pipeline's background machinery
// -----------------------------------------------------------------------

package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/models"
	"github.com/sourdin/jobsieve/internal/services/creation"
	"github.com/sourdin/jobsieve/internal/services/phase"
)

// Status is the aggregated worker status payload served to polling clients
type Status struct {
	Running    bool               `json:"running"`
	Creation   CreationStatus     `json:"creation"`
	Enrichment models.WorkerState `json:"enrichment"`
	Analysis   models.WorkerState `json:"analysis"`
}

// CreationStatus reports the cron-driven creation phase
type CreationStatus struct {
	Running    bool   `json:"running"`
	Schedule   string `json:"schedule,omitempty"`
	LastTaskID string `json:"last_task_id,omitempty"`
}

// Coordinator starts and stops the three phases and wires their chaining:
// a creation run that produced offers wakes the enrichment worker, and an
// enrichment pass that processed offers triggers one analysis pass.
type Coordinator struct {
	creationSvc      *creation.Service
	enrichRunner     *phase.Runner
	analysisRunner   *phase.Runner
	creationSchedule string
	cron             *cron.Cron
	logger           arbor.ILogger

	mu              sync.Mutex
	started         bool
	creationRunning bool
	lastTaskID      string
}

// NewCoordinator creates a stopped coordinator. creationSchedule may be
// empty, in which case creation runs only on manual trigger.
func NewCoordinator(creationSvc *creation.Service, enrichRunner, analysisRunner *phase.Runner, creationSchedule string, logger arbor.ILogger) *Coordinator {
	c := &Coordinator{
		creationSvc:      creationSvc,
		enrichRunner:     enrichRunner,
		analysisRunner:   analysisRunner,
		creationSchedule: creationSchedule,
		cron:             cron.New(),
		logger:           logger,
	}

	creationSvc.OnCreated(func(created int) {
		logger.Info().Int("created", created).Msg("New offers created, waking enrichment worker")
		enrichRunner.RunNow()
	})
	enrichRunner.OnProcessed(func(processed int) {
		logger.Info().Int("processed", processed).Msg("Offers enriched, triggering analysis pass")
		analysisRunner.RunNow()
	})

	return c
}

// StartAll activates the pipeline. Safe to call more than once.
func (c *Coordinator) StartAll() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	if c.creationSchedule != "" {
		if _, err := c.cron.AddFunc(c.creationSchedule, c.scheduledCreationRun); err != nil {
			c.mu.Lock()
			c.started = false
			c.mu.Unlock()
			return fmt.Errorf("failed to register creation schedule %q: %w", c.creationSchedule, err)
		}
		c.cron.Start()
	}

	// Both workers run an immediate first pass, so offers left over from a
	// previous process pick up where they stopped
	c.enrichRunner.Start()
	c.analysisRunner.Start()

	c.logger.Info().Str("creation_schedule", c.creationSchedule).Msg("Pipeline started")
	return nil
}

// StopAll halts the cron schedule and both worker loops
func (c *Coordinator) StopAll() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.mu.Unlock()

	c.cron.Stop()
	c.enrichRunner.Stop()
	c.analysisRunner.Stop()

	c.logger.Info().Msg("Pipeline stopped")
}

// RunCreation triggers a creation run and returns its task ID for polling.
// At most one creation run is active at a time.
func (c *Coordinator) RunCreation(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.creationRunning {
		c.mu.Unlock()
		return "", fmt.Errorf("creation run already in progress")
	}
	c.creationRunning = true
	c.mu.Unlock()

	taskID, done := c.creationSvc.Run(ctx)

	c.mu.Lock()
	c.lastTaskID = taskID
	c.mu.Unlock()

	go func() {
		<-done
		c.mu.Lock()
		c.creationRunning = false
		c.mu.Unlock()
	}()
	return taskID, nil
}

// scheduledCreationRun is the cron entry point
func (c *Coordinator) scheduledCreationRun() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in scheduled creation run")
		}
	}()

	taskID, err := c.RunCreation(context.Background())
	if err != nil {
		c.logger.Debug().Err(err).Msg("Skipping scheduled creation run")
		return
	}
	c.logger.Info().Str("task_id", taskID).Msg("Scheduled creation run started")
}

// Status returns the aggregated pipeline status
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	started := c.started
	creationRunning := c.creationRunning
	lastTaskID := c.lastTaskID
	c.mu.Unlock()

	return Status{
		Running: started,
		Creation: CreationStatus{
			Running:    creationRunning,
			Schedule:   c.creationSchedule,
			LastTaskID: lastTaskID,
		},
		Enrichment: c.enrichRunner.State(),
		Analysis:   c.analysisRunner.State(),
	}
}
