package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
)

// OfferStorage implements the OfferStorage interface for Badger
type OfferStorage struct {
	db      *BadgerDB
	sources interfaces.SourceStorage
	logger  arbor.ILogger
}

// NewOfferStorage creates a new OfferStorage instance
func NewOfferStorage(db *BadgerDB, sources interfaces.SourceStorage, logger arbor.ILogger) interfaces.OfferStorage {
	return &OfferStorage{
		db:      db,
		sources: sources,
		logger:  logger,
	}
}

// SaveOffer upserts an offer. An existing record keeps its AddedAt.
func (s *OfferStorage) SaveOffer(ctx context.Context, offer *models.OfferRecord) error {
	if err := offer.Validate(); err != nil {
		return fmt.Errorf("offer validation failed: %w", err)
	}

	var existing models.OfferRecord
	if err := s.db.Store().Get(offer.ID, &existing); err == nil {
		offer.AddedAt = existing.AddedAt
	}
	offer.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(offer.ID, offer); err != nil {
		return fmt.Errorf("failed to save offer: %w", err)
	}
	return nil
}

// CreateOffer inserts a new offer, leaving any existing record with the same
// ID untouched. Reports whether a record was created.
func (s *OfferStorage) CreateOffer(ctx context.Context, offer *models.OfferRecord) (bool, error) {
	if err := offer.Validate(); err != nil {
		return false, fmt.Errorf("offer validation failed: %w", err)
	}

	if offer.AddedAt.IsZero() {
		offer.AddedAt = time.Now()
	}
	offer.UpdatedAt = time.Now()

	err := s.db.Store().Insert(offer.ID, offer)
	if err == badgerhold.ErrKeyExists {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create offer: %w", err)
	}
	return true, nil
}

// GetOffer retrieves an offer by ID
func (s *OfferStorage) GetOffer(ctx context.Context, id string) (*models.OfferRecord, error) {
	var offer models.OfferRecord
	if err := s.db.Store().Get(id, &offer); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

// ListOffers retrieves all offers, oldest first
func (s *OfferStorage) ListOffers(ctx context.Context) ([]*models.OfferRecord, error) {
	var offers []models.OfferRecord
	if err := s.db.Store().Find(&offers, badgerhold.Where("ID").Ne("").SortBy("AddedAt")); err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	result := make([]*models.OfferRecord, len(offers))
	for i := range offers {
		result[i] = &offers[i]
	}
	return result, nil
}

// ListEligible returns offers whose status matches the phase's input status
// and whose source has that phase enabled, oldest first. The stable ordering
// is what downstream batches iterate in.
func (s *OfferStorage) ListEligible(ctx context.Context, phase models.Phase) ([]*models.OfferRecord, error) {
	status := phase.InputStatus()
	if status == "" {
		return nil, fmt.Errorf("phase %s has no input status", phase)
	}

	enabled, err := s.enabledSources(ctx, phase)
	if err != nil {
		return nil, err
	}

	var offers []models.OfferRecord
	query := badgerhold.Where("Status").Eq(status).SortBy("AddedAt")
	if err := s.db.Store().Find(&offers, query); err != nil {
		return nil, fmt.Errorf("failed to list eligible offers: %w", err)
	}

	result := make([]*models.OfferRecord, 0, len(offers))
	for i := range offers {
		if enabled[offers[i].SourceID] {
			result = append(result, &offers[i])
		}
	}
	return result, nil
}

// enabledSources returns the set of sender addresses with the phase enabled
func (s *OfferStorage) enabledSources(ctx context.Context, phase models.Phase) (map[string]bool, error) {
	sources, err := s.sources.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	enabled := make(map[string]bool, len(sources))
	for _, src := range sources {
		switch phase {
		case models.PhaseEnrichment:
			enabled[src.SenderAddress] = src.EnrichmentEnabled
		case models.PhaseAnalysis:
			enabled[src.SenderAddress] = src.AnalysisEnabled
		}
	}
	return enabled, nil
}

// UpdateStatus advances an offer's status
func (s *OfferStorage) UpdateStatus(ctx context.Context, id string, status models.OfferStatus) error {
	offer, err := s.GetOffer(ctx, id)
	if err != nil {
		return err
	}
	offer.Status = status
	offer.UpdatedAt = time.Now()
	if err := s.db.Store().Upsert(id, offer); err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}
	return nil
}
