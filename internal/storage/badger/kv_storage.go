package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/sourdin/jobsieve/internal/interfaces"
)

// KVStorage holds runtime settings: IMAP credentials, API keys, anything an
// operator sets without redeploying. Keys are case-insensitive.
type KVStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewKVStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KeyValueStorage {
	return &KVStorage{db: db, logger: logger}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	var pair interfaces.KeyValuePair
	switch err := s.db.Store().Get(normalizeKey(key), &pair); err {
	case nil:
		return pair.Value, nil
	case badgerhold.ErrNotFound:
		return "", interfaces.ErrKeyNotFound
	default:
		return "", fmt.Errorf("failed to get key: %w", err)
	}
}

func (s *KVStorage) Set(ctx context.Context, key, value, description string) error {
	k := normalizeKey(key)

	pair := interfaces.KeyValuePair{
		Key:         k,
		Value:       value,
		Description: description,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	var existing interfaces.KeyValuePair
	if err := s.db.Store().Get(k, &existing); err == nil {
		pair.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(k, &pair); err != nil {
		return fmt.Errorf("failed to set key/value: %w", err)
	}
	return nil
}

func (s *KVStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(normalizeKey(key), interfaces.KeyValuePair{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
