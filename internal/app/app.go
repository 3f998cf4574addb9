// -----------------------------------------------------------------------
// Application composition root - wires storage, services and workers
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/extract"
	"github.com/sourdin/jobsieve/internal/handlers"
	"github.com/sourdin/jobsieve/internal/httpclient"
	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
	"github.com/sourdin/jobsieve/internal/scheduler"
	"github.com/sourdin/jobsieve/internal/services/analysis"
	"github.com/sourdin/jobsieve/internal/services/creation"
	"github.com/sourdin/jobsieve/internal/services/enrich"
	"github.com/sourdin/jobsieve/internal/services/llm"
	"github.com/sourdin/jobsieve/internal/services/mailbox"
	"github.com/sourdin/jobsieve/internal/services/orchestrator"
	"github.com/sourdin/jobsieve/internal/services/phase"
	"github.com/sourdin/jobsieve/internal/services/tasks"
	"github.com/sourdin/jobsieve/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager
	TaskStore      interfaces.TaskStore
	MailReader     interfaces.MailReader
	Coordinator    *orchestrator.Coordinator

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	TaskHandler   *handlers.TaskHandler
	SourceHandler *handlers.SourceHandler
	WorkerHandler *handlers.WorkerHandler
}

// New wires the application from its configuration
func New(cfg *common.Config) (*App, error) {
	logger := common.GetLogger()
	ctx, cancel := context.WithCancel(context.Background())

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	taskStore := tasks.NewStore(logger)

	// Development reads saved notification emails from a directory,
	// production reads the live IMAP inbox
	var mailReader interfaces.MailReader
	if cfg.Environment == "production" {
		mailReader = mailbox.NewImapReader(cfg.Imap, storageManager.KeyValueStorage(), logger)
	} else {
		mailReader = mailbox.NewFixtureReader(cfg.Mailbox.FixtureDir, logger)
	}

	creationSvc := creation.NewService(mailReader, storageManager, taskStore, extract.NewExtractor(logger), logger)

	var fetchOpts []httpclient.Option
	if cfg.Workers.FetchRatePerSec > 0 {
		fetchOpts = append(fetchOpts, httpclient.WithRateLimit(cfg.Workers.FetchRatePerSec))
	}
	fetcher := httpclient.NewClient(logger, fetchOpts...)
	var renderer interfaces.PageRenderer
	if cfg.Workers.RenderFallback {
		renderer = httpclient.NewRenderer(logger)
	}
	enrichSvc := enrich.NewService(storageManager, fetcher, renderer, cfg.Workers.BatchSize, logger)

	analysisBatch := buildAnalysisBatch(cfg, storageManager, logger)

	sched := scheduler.NewTimerScheduler()
	interval := cfg.WorkerInterval()
	retryInterval := cfg.WorkerRetryInterval()

	enrichRunner := phase.NewRunner(models.PhaseEnrichment, enrichSvc.Batch, sched, interval, retryInterval, logger)
	analysisRunner := phase.NewRunner(models.PhaseAnalysis, analysisBatch, sched, interval, retryInterval, logger)

	coordinator := orchestrator.NewCoordinator(creationSvc, enrichRunner, analysisRunner, cfg.Workers.CreationSchedule, logger)

	app := &App{
		Config:         cfg,
		Logger:         logger,
		ctx:            ctx,
		cancelCtx:      cancel,
		StorageManager: storageManager,
		TaskStore:      taskStore,
		MailReader:     mailReader,
		Coordinator:    coordinator,
		APIHandler:     handlers.NewAPIHandler(),
		TaskHandler:    handlers.NewTaskHandler(taskStore, logger),
		SourceHandler:  handlers.NewSourceHandler(storageManager.SourceStorage(), logger),
		WorkerHandler:  handlers.NewWorkerHandler(coordinator, logger),
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Msg("Application initialized")

	return app, nil
}

// buildAnalysisBatch creates the analysis worker body. A missing API key or
// criteria file leaves the worker in place but failing each pass with a
// clear error, visible in the status payload, instead of preventing boot.
func buildAnalysisBatch(cfg *common.Config, storageManager interfaces.StorageManager, logger arbor.ILogger) phase.BatchFunc {
	llmService, err := llm.NewLLMService(cfg, storageManager.KeyValueStorage(), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Analysis disabled until an LLM provider is configured")
		return unavailableBatch(fmt.Errorf("llm provider not configured: %w", err))
	}

	criteria, err := analysis.LoadCriteria(cfg.Analysis.CriteriaPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Analysis disabled until a criteria file is available")
		return unavailableBatch(fmt.Errorf("criteria not available: %w", err))
	}

	return analysis.NewService(storageManager, llmService, criteria, cfg.Workers.BatchSize, logger).Batch
}

func unavailableBatch(cause error) phase.BatchFunc {
	return func(ctx context.Context, report func(models.WorkerProgress)) (phase.BatchResult, error) {
		return phase.BatchResult{}, cause
	}
}

// Start activates the background pipeline
func (a *App) Start() error {
	return a.Coordinator.StartAll()
}

// Shutdown stops the workers and closes storage
func (a *App) Shutdown() {
	a.Coordinator.StopAll()
	a.cancelCtx()

	if err := a.StorageManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close storage")
	}

	a.Logger.Info().Msg("Application stopped")
}
