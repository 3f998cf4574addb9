// -----------------------------------------------------------------------
// Enrichment phase - fetches each offer page and fills descriptive fields
// -----------------------------------------------------------------------

package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/sourdin/jobsieve/internal/httpclient"
	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
	"github.com/sourdin/jobsieve/internal/services/phase"
)

// Service fills offer records from their live pages and advances them to
// the analysis queue. One failing record never fails the pass.
type Service struct {
	storage        interfaces.StorageManager
	fetcher        interfaces.PageFetcher
	renderer       interfaces.PageRenderer
	batchSize      int
	renderFallback bool
	logger         arbor.ILogger
}

// NewService creates the enrichment phase service. renderer may be nil when
// the headless-browser fallback is disabled.
func NewService(storage interfaces.StorageManager, fetcher interfaces.PageFetcher, renderer interfaces.PageRenderer, batchSize int, logger arbor.ILogger) *Service {
	return &Service{
		storage:        storage,
		fetcher:        fetcher,
		renderer:       renderer,
		batchSize:      batchSize,
		renderFallback: renderer != nil,
		logger:         logger,
	}
}

// Batch processes one bounded batch of fetchable offers. It implements the
// phase runner contract.
func (s *Service) Batch(ctx context.Context, report func(models.WorkerProgress)) (phase.BatchResult, error) {
	eligible, err := s.storage.OfferStorage().ListEligible(ctx, models.PhaseEnrichment)
	if err != nil {
		return phase.BatchResult{}, fmt.Errorf("failed to list fetchable offers: %w", err)
	}

	result := phase.BatchResult{Eligible: len(eligible)}

	batch := eligible
	if s.batchSize > 0 && len(batch) > s.batchSize {
		batch = batch[:s.batchSize]
	}

	for i, offer := range batch {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Int("remaining", len(batch)-i).Msg("Enrichment pass aborted")
			return result, nil
		}

		report(models.WorkerProgress{Index: i + 1, Total: len(batch), ItemID: offer.ID})

		if err := s.enrichOffer(ctx, offer); err != nil {
			result.Failed++
			s.logger.Warn().Str("offer_id", offer.ID).Err(err).Msg("Failed to enrich offer")
			continue
		}
		result.Processed++
	}

	return result, nil
}

// enrichOffer fetches one offer page and saves the filled record. Gone
// pages mark the offer expired, a valid terminal outcome.
func (s *Service) enrichOffer(ctx context.Context, offer *models.OfferRecord) error {
	html, err := s.fetcher.Fetch(ctx, offer.URL)

	var expired *httpclient.ExpiredError
	if errors.As(err, &expired) {
		offer.Status = models.OfferStatusExpired
		if saveErr := s.storage.OfferStorage().SaveOffer(ctx, offer); saveErr != nil {
			return fmt.Errorf("failed to save expired offer: %w", saveErr)
		}
		s.logger.Info().Str("offer_id", offer.ID).Str("url", offer.URL).Msg("Offer page gone, marked expired")
		return nil
	}
	if err != nil {
		return err
	}

	details, err := parsePage(html)
	if err != nil {
		return err
	}

	// JavaScript-shell pages come back empty from a static fetch
	if details.Empty() && s.renderFallback {
		rendered, renderErr := s.renderer.Render(ctx, offer.URL)
		if renderErr != nil {
			return fmt.Errorf("static fetch was empty and render failed: %w", renderErr)
		}
		details, err = parsePage(rendered)
		if err != nil {
			return err
		}
	}

	if details.Title != "" {
		offer.Title = details.Title
	}
	if details.Company != "" && offer.Company == "" {
		offer.Company = details.Company
	}
	offer.Description = details.Description
	offer.Status = models.OfferStatusToAnalyze

	if err := s.storage.OfferStorage().SaveOffer(ctx, offer); err != nil {
		return fmt.Errorf("failed to save enriched offer: %w", err)
	}

	s.logger.Debug().
		Str("offer_id", offer.ID).
		Str("title", offer.Title).
		Int("description_length", len(offer.Description)).
		Msg("Offer enriched")

	return nil
}
