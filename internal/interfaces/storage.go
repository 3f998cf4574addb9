package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/sourdin/jobsieve/internal/models"
)

// ErrKeyNotFound is returned when a key/value pair does not exist
var ErrKeyNotFound = errors.New("key not found")

// ErrNotFound is returned when a stored record does not exist
var ErrNotFound = errors.New("not found")

// KeyValuePair represents a stored key/value setting (credentials, API keys)
type KeyValuePair struct {
	Key         string    `json:"key" badgerhold:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OfferStorage persists offer records
type OfferStorage interface {
	// SaveOffer upserts an offer. An existing record keeps its AddedAt.
	SaveOffer(ctx context.Context, offer *models.OfferRecord) error
	// CreateOffer inserts a new offer and reports whether it was created.
	// An existing record with the same ID is left untouched (idempotent
	// re-processing of the same email).
	CreateOffer(ctx context.Context, offer *models.OfferRecord) (bool, error)
	GetOffer(ctx context.Context, id string) (*models.OfferRecord, error)
	ListOffers(ctx context.Context) ([]*models.OfferRecord, error)
	// ListEligible returns offers whose status matches the phase's input
	// status and whose source has that phase enabled, in stable order.
	ListEligible(ctx context.Context, phase models.Phase) ([]*models.OfferRecord, error)
	UpdateStatus(ctx context.Context, id string, status models.OfferStatus) error
}

// SourceStorage persists sources keyed by sender address
type SourceStorage interface {
	SaveSource(ctx context.Context, source *models.Source) error
	GetSource(ctx context.Context, senderAddress string) (*models.Source, error)
	// GetOrCreateSource returns the source for a sender, creating a disabled
	// Unknown-provider source on first sighting.
	GetOrCreateSource(ctx context.Context, senderAddress, providerName string) (*models.Source, error)
	ListSources(ctx context.Context) ([]*models.Source, error)
}

// KeyValueStorage provides key/value settings storage
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
}

// StorageManager provides access to all storage implementations
type StorageManager interface {
	OfferStorage() OfferStorage
	SourceStorage() SourceStorage
	KeyValueStorage() KeyValueStorage
	Close() error
}
