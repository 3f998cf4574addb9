package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/sourdin/jobsieve/internal/common"
	"github.com/sourdin/jobsieve/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db      *BadgerDB
	offers  interfaces.OfferStorage
	sources interfaces.SourceStorage
	kv      interfaces.KeyValueStorage
	logger  arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	sources := NewSourceStorage(db, logger)
	manager := &Manager{
		db:      db,
		sources: sources,
		offers:  NewOfferStorage(db, sources, logger),
		kv:      NewKVStorage(db, logger),
		logger:  logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// OfferStorage returns the Offer storage interface
func (m *Manager) OfferStorage() interfaces.OfferStorage {
	return m.offers
}

// SourceStorage returns the Source storage interface
func (m *Manager) SourceStorage() interfaces.SourceStorage {
	return m.sources
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
