package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func mustKeyValueStore(testContext *testing.T, clock func() time.Time) (*KeyValueStore, *gorm.DB) {
	testContext.Helper()
	databasePath := filepath.Join(testContext.TempDir(), "kv.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Item{}); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}
	store, err := NewKeyValueStore(db, clock)
	if err != nil {
		testContext.Fatalf("failed to build store: %v", err)
	}
	return store, db
}

func TestKeyValueStoreGetMissingKey(testContext *testing.T) {
	store, _ := mustKeyValueStore(testContext, nil)

	value, found, err := store.Get(context.Background(), "absent")
	if err != nil {
		testContext.Fatalf("unexpected error: %v", err)
	}
	if found || value != "" {
		testContext.Fatalf("expected missing key, got found=%v value=%q", found, value)
	}
}

func TestKeyValueStoreSetOverwrites(testContext *testing.T) {
	ticks := int64(1700000000)
	store, db := mustKeyValueStore(testContext, func() time.Time {
		ticks++
		return time.Unix(ticks, 0)
	})
	ctx := context.Background()

	if err := store.Set(ctx, "koddagbok.v0.1", `{"entries":{}}`); err != nil {
		testContext.Fatalf("first set failed: %v", err)
	}
	if err := store.Set(ctx, "koddagbok.v0.1", `{"entries":{"2024-06-01":{}}}`); err != nil {
		testContext.Fatalf("second set failed: %v", err)
	}

	value, found, err := store.Get(ctx, "koddagbok.v0.1")
	if err != nil || !found {
		testContext.Fatalf("expected stored value, found=%v err=%v", found, err)
	}
	if value != `{"entries":{"2024-06-01":{}}}` {
		testContext.Fatalf("expected overwritten value, got %q", value)
	}

	var count int64
	if err := db.Model(&Item{}).Count(&count).Error; err != nil {
		testContext.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		testContext.Fatalf("expected a single row, got %d", count)
	}

	var item Item
	if err := db.Where("storage_key = ?", "koddagbok.v0.1").Take(&item).Error; err != nil {
		testContext.Fatalf("reload failed: %v", err)
	}
	if item.UpdatedAtSeconds != 1700000002 {
		testContext.Fatalf("expected timestamp of second write, got %d", item.UpdatedAtSeconds)
	}
}

func TestKeyValueStoreNamespacesAreIsolated(testContext *testing.T) {
	store, _ := mustKeyValueStore(testContext, nil)
	ctx := context.Background()

	if err := store.Set(ctx, "alpha", "a"); err != nil {
		testContext.Fatalf("set failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "beta"); found {
		testContext.Fatalf("expected beta to be absent")
	}
	if value, found, _ := store.Get(ctx, "alpha"); !found || value != "a" {
		testContext.Fatalf("expected alpha to keep its value, got %q", value)
	}
}

func TestKeyValueStoreRejectsEmptyKey(testContext *testing.T) {
	store, _ := mustKeyValueStore(testContext, nil)

	if err := store.Set(context.Background(), "", "x"); !errors.Is(err, ErrEmptyKey) {
		testContext.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, _, err := store.Get(context.Background(), ""); !errors.Is(err, ErrEmptyKey) {
		testContext.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestNewKeyValueStoreRequiresDatabase(testContext *testing.T) {
	if _, err := NewKeyValueStore(nil, nil); err == nil {
		testContext.Fatalf("expected error for missing database")
	}
}
