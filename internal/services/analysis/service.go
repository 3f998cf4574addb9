// -----------------------------------------------------------------------
// Analysis phase - scores enriched offers against the operator's criteria
// -----------------------------------------------------------------------

package analysis

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
	"github.com/sourdin/jobsieve/internal/services/phase"
)

// Service scores analyzable offers with the configured model and advances
// them to done
type Service struct {
	storage   interfaces.StorageManager
	llm       interfaces.LLMService
	criteria  *Criteria
	batchSize int
	logger    arbor.ILogger
}

// NewService creates the analysis phase service
func NewService(storage interfaces.StorageManager, llm interfaces.LLMService, criteria *Criteria, batchSize int, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		llm:       llm,
		criteria:  criteria,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Batch processes one bounded batch of analyzable offers. It implements
// the phase runner contract.
func (s *Service) Batch(ctx context.Context, report func(models.WorkerProgress)) (phase.BatchResult, error) {
	eligible, err := s.storage.OfferStorage().ListEligible(ctx, models.PhaseAnalysis)
	if err != nil {
		return phase.BatchResult{}, fmt.Errorf("failed to list analyzable offers: %w", err)
	}

	result := phase.BatchResult{Eligible: len(eligible)}

	batch := eligible
	if s.batchSize > 0 && len(batch) > s.batchSize {
		batch = batch[:s.batchSize]
	}

	for i, offer := range batch {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Int("remaining", len(batch)-i).Msg("Analysis pass aborted")
			return result, nil
		}

		report(models.WorkerProgress{Index: i + 1, Total: len(batch), ItemID: offer.ID})

		if err := s.analyzeOffer(ctx, offer); err != nil {
			result.Failed++
			s.logger.Warn().Str("offer_id", offer.ID).Err(err).Msg("Failed to analyze offer")
			continue
		}
		result.Processed++
	}

	return result, nil
}

func (s *Service) analyzeOffer(ctx context.Context, offer *models.OfferRecord) error {
	prompt := buildPrompt(s.criteria, offer)

	response, err := s.llm.Analyze(ctx, prompt)
	if err != nil {
		return fmt.Errorf("model call failed: %w", err)
	}

	score, err := parseScore(response)
	if err != nil {
		return err
	}

	offer.Score = score.Score
	offer.ScoreReason = score.Reason
	offer.Status = models.OfferStatusDone

	if err := s.storage.OfferStorage().SaveOffer(ctx, offer); err != nil {
		return fmt.Errorf("failed to save analyzed offer: %w", err)
	}

	s.logger.Debug().
		Str("offer_id", offer.ID).
		Int("score", score.Score).
		Str("model", s.llm.ModelName()).
		Msg("Offer analyzed")

	return nil
}
