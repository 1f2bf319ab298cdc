package journal

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	opStoreNew  = "journal.store.new"
	opLoad      = "journal.load"
	opSave      = "journal.save"
	opSaveToday = "journal.save_today"
	opClear     = "journal.clear_today"
	opExport    = "journal.export"
	opImport    = "journal.import"
)

var noOpLogger = zap.NewNop()

// Backend is the key/value blob storage the journal persists into.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// StoreConfig wires a Store. PickThought returns an index in [0, n) and
// defaults to math/rand.
type StoreConfig struct {
	Backend     Backend
	Namespace   string
	Clock       func() time.Time
	Location    *time.Location
	PickThought func(n int) int
	Logger      *zap.Logger
}

// Store is a handle on one namespaced journal. It keeps no state between
// calls; every operation re-reads the blob. Mutating use cases hold mu across
// their load and save so concurrent callers do not overwrite each other.
type Store struct {
	mu sync.Mutex

	backend     Backend
	namespace   string
	clock       func() time.Time
	location    *time.Location
	pickThought func(n int) int
	logger      *zap.Logger
}

func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Backend == nil {
		return nil, newServiceError(opStoreNew, "missing_backend", errMissingBackend)
	}
	if cfg.Namespace == "" {
		return nil, newServiceError(opStoreNew, "missing_namespace", errMissingNamespace)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	pick := cfg.PickThought
	if pick == nil {
		pick = rand.IntN
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Store{
		backend:     cfg.Backend,
		namespace:   cfg.Namespace,
		clock:       clock,
		location:    location,
		pickThought: pick,
		logger:      logger,
	}, nil
}

// Location returns the time zone used to derive date keys.
func (s *Store) Location() *time.Location {
	return s.location
}

// Now returns the store clock reading in the journal's location.
func (s *Store) Now() time.Time {
	return s.clock().In(s.location)
}

// TodayKey returns the date key of the current local calendar day.
func (s *Store) TodayKey() DateKey {
	return DateKeyFor(s.Now())
}

// RandomThought returns one of the built-in prompts.
func (s *Store) RandomThought() string {
	return pickThought(s.pickThought)
}

// Load reads the persisted database. Missing or unusable content yields an
// empty database.
func (s *Store) Load(ctx context.Context) Database {
	raw, found, err := s.backend.Get(ctx, s.namespace)
	if err != nil {
		s.logWarn(opLoad, "storage_read_failed", err)
		return NewDatabase()
	}
	if !found || raw == "" {
		return NewDatabase()
	}

	db, err := decodeStored(raw)
	if err != nil {
		s.logWarn(opLoad, "blob_malformed", err)
	}
	if skipped := db.Unreadable(); len(skipped) > 0 {
		dates := make([]string, 0, len(skipped))
		for _, key := range skipped {
			dates = append(dates, key.String())
		}
		s.logWarn(opLoad, "entry_malformed", nil, zap.Strings("dates", dates))
	}
	return db
}

// Save replaces the persisted database with db.
func (s *Store) Save(ctx context.Context, db Database) error {
	payload, err := encodeCompact(db)
	if err != nil {
		s.logError(opSave, "encode_failed", err)
		return newServiceError(opSave, "encode_failed", err)
	}
	if err := s.backend.Set(ctx, s.namespace, string(payload)); err != nil {
		s.logError(opSave, "storage_write_failed", err)
		return newServiceError(opSave, "storage_write_failed", err)
	}
	return nil
}

// Upsert writes the entry at key with a trimmed thought, falling back to a
// random prompt when the thought is blank.
func (s *Store) Upsert(db Database, key DateKey, mood float64, thought string) Database {
	return upsertEntry(db, key, mood, thought, s.clock(), s.RandomThought)
}

// Today returns the stored entry for today, or the editor defaults.
func (s *Store) Today(ctx context.Context) TodayView {
	now := s.Now()
	key := DateKeyFor(now)
	db := s.Load(ctx)
	if entry, ok := db.Lookup(key); ok {
		return TodayView{Date: key, Entry: entry, Found: true, Current: now}
	}
	return TodayView{
		Date:    key,
		Entry:   Entry{Mood: defaultMood, Thought: s.RandomThought()},
		Found:   false,
		Current: now,
	}
}

// SaveToday records mood and thought for the current day.
func (s *Store) SaveToday(ctx context.Context, mood float64, thought string) (DateKey, Entry, error) {
	if !IsFiniteMood(mood) {
		return s.TodayKey(), Entry{}, newServiceError(opSaveToday, "invalid_mood", ErrMoodNotFinite)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.TodayKey()
	db := s.Upsert(s.Load(ctx), key, mood, thought)
	if err := s.Save(ctx, db); err != nil {
		s.logError(opSaveToday, "save_failed", err, zap.String("date", key.String()))
		return key, Entry{}, err
	}
	entry := db.Entries[key]
	s.logger.Info("journal entry saved", zap.String("date", key.String()), zap.Float64("mood", mood))
	return key, entry, nil
}

// ClearToday deletes the current day's entry. Nothing is written when there
// is no entry.
func (s *Store) ClearToday(ctx context.Context) (DateKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.TodayKey()
	db, removed := Remove(s.Load(ctx), key)
	if !removed {
		return key, false, nil
	}
	if err := s.Save(ctx, db); err != nil {
		s.logError(opClear, "save_failed", err, zap.String("date", key.String()))
		return key, false, err
	}
	s.logger.Info("journal entry cleared", zap.String("date", key.String()))
	return key, true, nil
}

// History returns the newest entries first.
func (s *Store) History(ctx context.Context, limit int) []HistoryItem {
	return ListByDateDescending(s.Load(ctx), limit)
}

// Export renders the current database as indented JSON.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	payload, err := encodePretty(s.Load(ctx))
	if err != nil {
		s.logError(opExport, "encode_failed", err)
		return nil, newServiceError(opExport, "encode_failed", err)
	}
	return payload, nil
}

// Import merges raw into the persisted database and saves immediately.
// A FormatError leaves storage untouched.
func (s *Store) Import(ctx context.Context, raw []byte) (ImportResult, error) {
	incoming, err := DecodeImport(raw)
	if err != nil {
		s.logWarn(opImport, "invalid_format", err)
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := Merge(s.Load(ctx), incoming)
	if err := s.Save(ctx, merged); err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{Imported: incoming.Len(), Total: merged.Len()}
	s.logger.Info("journal import merged", zap.Int("imported", result.Imported), zap.Int("total", result.Total))
	return result, nil
}

func (s *Store) logWarn(operation, reason string, err error, fields ...zap.Field) {
	s.logger.Warn("journal store warning", s.attrs(operation, reason, err, fields)...)
}

func (s *Store) logError(operation, reason string, err error, fields ...zap.Field) {
	s.logger.Error("journal store error", s.attrs(operation, reason, err, fields)...)
}

func (s *Store) attrs(operation, reason string, err error, fields []zap.Field) []zap.Field {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.String("namespace", s.namespace),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	return append(attrs, fields...)
}
