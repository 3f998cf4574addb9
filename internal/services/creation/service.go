// -----------------------------------------------------------------------
// Creation phase - turns unread notification emails into offer records
// -----------------------------------------------------------------------

package creation

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/extract"
	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
)

// Result is the task payload of one creation run
type Result struct {
	Emails      int `json:"emails"`
	OffersFound int `json:"offers_found"`
	Created     int `json:"created"`
	Skipped     int `json:"skipped"`
}

// Service runs the creation phase: fetch unread emails, resolve their
// senders to sources, extract offers and persist new ones. Runs are
// idempotent: re-processing the same email creates nothing new.
type Service struct {
	mail      interfaces.MailReader
	storage   interfaces.StorageManager
	tasks     interfaces.TaskStore
	extractor *extract.Extractor
	logger    arbor.ILogger
	onCreated func(created int)
}

// NewService creates the creation phase service
func NewService(mail interfaces.MailReader, storage interfaces.StorageManager, tasks interfaces.TaskStore, extractor *extract.Extractor, logger arbor.ILogger) *Service {
	return &Service{
		mail:      mail,
		storage:   storage,
		tasks:     tasks,
		extractor: extractor,
		logger:    logger,
	}
}

// OnCreated registers a hook invoked after every run that created at least
// one offer. Used to wake the enrichment worker.
func (s *Service) OnCreated(fn func(created int)) {
	s.onCreated = fn
}

// Run starts a creation run in the background. It returns the task ID for
// progress polling and a channel closed when the run reaches a terminal
// state.
func (s *Service) Run(ctx context.Context) (string, <-chan struct{}) {
	taskID := s.tasks.StartTask()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Execute(ctx, taskID); err != nil {
			s.logger.Warn().Str("task_id", taskID).Err(err).Msg("Creation run failed")
		}
	}()
	return taskID, done
}

// Execute performs one creation run synchronously, reporting progress to
// the task registry.
func (s *Service) Execute(ctx context.Context, taskID string) error {
	result, err := s.process(ctx, taskID)
	if err != nil {
		s.tasks.Fail(taskID, err)
		return err
	}

	s.tasks.Complete(taskID, result)

	if result.Created > 0 && s.onCreated != nil {
		s.onCreated(result.Created)
	}
	return nil
}

func (s *Service) process(ctx context.Context, taskID string) (*Result, error) {
	s.tasks.UpdateProgress(taskID, "fetching unread emails", 0)

	emails, err := s.mail.FetchUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread emails: %w", err)
	}

	result := &Result{Emails: len(emails)}
	s.tasks.UpdateProgress(taskID, fmt.Sprintf("found %d items", len(emails)), 0)

	for i, email := range emails {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("creation run aborted: %w", err)
		}

		if err := s.processEmail(ctx, taskID, i+1, len(emails), email, result); err != nil {
			// One bad email does not fail the run
			s.logger.Warn().
				Str("from", email.From).
				Str("email_id", email.ID).
				Err(err).
				Msg("Failed to process email")
		} else if err := s.mail.MarkRead(ctx, email.ID); err != nil {
			s.logger.Warn().Str("email_id", email.ID).Err(err).Msg("Failed to mark email as read")
		}

		// Emitted after the email so the percent never moves backwards:
		// nested j/k updates for email i interpolate from i-1 up to i.
		s.tasks.UpdateProgress(taskID, fmt.Sprintf("%d/%d", i+1, len(emails)), 0)
	}

	s.logger.Info().
		Int("emails", result.Emails).
		Int("offers_found", result.OffersFound).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("Creation run finished")

	return result, nil
}

func (s *Service) processEmail(ctx context.Context, taskID string, index, total int, email interfaces.Email, result *Result) error {
	source, err := s.storage.SourceStorage().GetOrCreateSource(ctx, email.From, models.DetectProvider(email.From))
	if err != nil {
		return fmt.Errorf("failed to resolve source for %s: %w", email.From, err)
	}

	if !source.CreationEnabled {
		s.logger.Debug().
			Str("sender", source.SenderAddress).
			Str("provider", source.ProviderName).
			Msg("Creation disabled for source, skipping email")
		return nil
	}

	offers := s.extractor.ExtractOffers(source, email.HTML)
	result.OffersFound += len(offers)

	for j := range offers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("creation run aborted: %w", err)
		}

		s.tasks.UpdateProgress(taskID, fmt.Sprintf("%d/%d -> %d/%d", index, total, j+1, len(offers)), 0)

		created, err := s.storage.OfferStorage().CreateOffer(ctx, &offers[j])
		if err != nil {
			s.logger.Warn().Str("offer_id", offers[j].ID).Err(err).Msg("Failed to create offer")
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	return nil
}
