package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
	"github.com/sourdin/jobsieve/internal/interfaces"
	"github.com/sourdin/jobsieve/internal/models"
)

// SourceStorage implements the SourceStorage interface for Badger. Sources
// are keyed by their (lowercased) sender address.
type SourceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSourceStorage creates a new SourceStorage instance
func NewSourceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SourceStorage {
	return &SourceStorage{
		db:     db,
		logger: logger,
	}
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// SaveSource validates and upserts a source, preserving CreatedAt
func (s *SourceStorage) SaveSource(ctx context.Context, source *models.Source) error {
	source.SenderAddress = normalizeAddress(source.SenderAddress)

	if err := source.Validate(); err != nil {
		return fmt.Errorf("source validation failed: %w", err)
	}

	now := time.Now()
	var existing models.Source
	if err := s.db.Store().Get(source.SenderAddress, &existing); err == nil {
		source.CreatedAt = existing.CreatedAt
	} else if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	if err := s.db.Store().Upsert(source.SenderAddress, source); err != nil {
		return fmt.Errorf("failed to save source: %w", err)
	}

	s.logger.Debug().
		Str("sender", source.SenderAddress).
		Str("provider", source.ProviderName).
		Msg("Source saved")

	return nil
}

// GetSource retrieves a source by sender address
func (s *SourceStorage) GetSource(ctx context.Context, senderAddress string) (*models.Source, error) {
	var source models.Source
	if err := s.db.Store().Get(normalizeAddress(senderAddress), &source); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return &source, nil
}

// GetOrCreateSource returns the source for a sender, creating it on first
// sighting. New sources start with every phase disabled; unrecognized
// senders additionally get the Unknown provider, so they are never
// auto-processed until explicitly configured.
func (s *SourceStorage) GetOrCreateSource(ctx context.Context, senderAddress, providerName string) (*models.Source, error) {
	if existing, err := s.GetSource(ctx, senderAddress); err == nil {
		return existing, nil
	} else if err != interfaces.ErrNotFound {
		return nil, err
	}

	if providerName == "" {
		providerName = models.ProviderUnknown
	}

	source := &models.Source{
		SenderAddress: normalizeAddress(senderAddress),
		ProviderName:  providerName,
	}
	if err := s.SaveSource(ctx, source); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("sender", source.SenderAddress).
		Str("provider", providerName).
		Msg("New source created from unseen sender")

	return source, nil
}

// ListSources retrieves all sources
func (s *SourceStorage) ListSources(ctx context.Context) ([]*models.Source, error) {
	var sources []models.Source
	if err := s.db.Store().Find(&sources, badgerhold.Where("SenderAddress").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	result := make([]*models.Source, len(sources))
	for i := range sources {
		result[i] = &sources[i]
	}
	return result, nil
}
