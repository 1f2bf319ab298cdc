package journal

import (
	"sort"
	"strings"
	"time"
)

func upsertEntry(db Database, key DateKey, mood float64, thought string, savedAt time.Time, fallback func() string) Database {
	updated := db.Clone()
	trimmed := strings.TrimSpace(thought)
	if trimmed == "" {
		trimmed = fallback()
	}
	delete(updated.unreadable, key)
	updated.Entries[key] = Entry{
		Mood:    mood,
		Thought: trimmed,
		SavedAt: FormatSavedAt(savedAt),
		Version: EntryVersion,
	}
	return updated
}

// Remove deletes the entry at key and reports whether one existed.
// The input database is returned as-is when there is nothing to delete.
func Remove(db Database, key DateKey) (Database, bool) {
	if !db.has(key) {
		return db, false
	}
	updated := db.Clone()
	delete(updated.Entries, key)
	delete(updated.unreadable, key)
	return updated, true
}

// Merge overlays incoming entries onto db. Incoming entries replace existing
// ones wholesale on key collision.
func Merge(db Database, incoming Database) Database {
	merged := db.Clone()
	for key, entry := range incoming.Entries {
		delete(merged.unreadable, key)
		merged.Entries[key] = entry
	}
	return merged
}

// MergeImport validates raw as a database document and merges it into db.
// On a FormatError db is returned untouched.
func MergeImport(db Database, raw []byte) (Database, error) {
	incoming, err := DecodeImport(raw)
	if err != nil {
		return db, err
	}
	return Merge(db, incoming), nil
}

// ListByDateDescending returns entries newest first, truncated to limit.
// A non-positive limit returns every entry.
func ListByDateDescending(db Database, limit int) []HistoryItem {
	keys := make([]DateKey, 0, len(db.Entries))
	for key := range db.Entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] > keys[j]
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	items := make([]HistoryItem, 0, len(keys))
	for _, key := range keys {
		items = append(items, HistoryItem{Date: key, Entry: db.Entries[key]})
	}
	return items
}
