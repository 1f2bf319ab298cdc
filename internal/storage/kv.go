package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnKey       = "storage_key"
	columnValue     = "value"
	columnUpdatedAt = "updated_at_s"
	queryKey        = columnKey + " = ?"
)

var (
	errMissingDatabase = errors.New("storage: database handle is required")
	// ErrEmptyKey indicates a blank storage key.
	ErrEmptyKey = errors.New("storage: key is required")
)

// KeyValueStore persists string blobs by key in the local_storage table.
type KeyValueStore struct {
	db    *gorm.DB
	clock func() time.Time
}

func NewKeyValueStore(db *gorm.DB, clock func() time.Time) (*KeyValueStore, error) {
	if db == nil {
		return nil, errMissingDatabase
	}
	if clock == nil {
		clock = time.Now
	}
	return &KeyValueStore{db: db, clock: clock}, nil
}

// Get returns the value at key and whether it exists.
func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	var item Item
	err := s.db.WithContext(ctx).Where(queryKey, key).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read %q: %w", key, err)
	}
	return item.Value, true, nil
}

// Set writes value at key, replacing any prior content.
func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	item := Item{
		Key:              key,
		Value:            value,
		UpdatedAtSeconds: s.clock().UTC().Unix(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: columnKey}},
		DoUpdates: clause.AssignmentColumns([]string{columnValue, columnUpdatedAt}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("storage: write %q: %w", key, err)
	}
	return nil
}
