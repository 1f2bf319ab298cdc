package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// EntryVersion tags the persisted entry format revision.
const EntryVersion = "0.1"

const (
	dateKeyLayout   = "2006-01-02"
	savedAtLayout   = "2006-01-02T15:04:05.000Z"
	defaultMood     = 50
	noonHour        = 12
	dateKeyByteSize = len(dateKeyLayout)
)

var (
	// ErrInvalidDateKey indicates that a date key is not a YYYY-MM-DD calendar date.
	ErrInvalidDateKey = errors.New("journal: invalid date key")
)

// DateKey identifies one day of the journal in YYYY-MM-DD form.
type DateKey string

// NewDateKey validates raw input and returns a DateKey.
func NewDateKey(rawInput string) (DateKey, error) {
	trimmed := strings.TrimSpace(rawInput)
	if len(trimmed) != dateKeyByteSize {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, rawInput)
	}
	if _, err := time.Parse(dateKeyLayout, trimmed); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, rawInput)
	}
	return DateKey(trimmed), nil
}

// DateKeyFor derives the key from the calendar fields of t in t's own location.
func DateKeyFor(t time.Time) DateKey {
	return DateKey(fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day()))
}

// String returns the underlying key.
func (key DateKey) String() string {
	return string(key)
}

// Noon returns midday of the keyed date in loc.
func (key DateKey) Noon(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(dateKeyLayout, string(key), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, string(key))
	}
	return day.Add(noonHour * time.Hour), nil
}

// Entry is one day's mood score and thought.
type Entry struct {
	Mood    float64 `json:"mood"`
	Thought string  `json:"thought"`
	SavedAt string  `json:"savedAt"`
	Version string  `json:"version"`
}

// UnmarshalJSON decodes an entry, giving a missing or null mood the editor
// default.
func (entry *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var decoded struct {
		plain
		Mood *float64 `json:"mood"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*entry = Entry(decoded.plain)
	entry.Mood = defaultMood
	if decoded.Mood != nil {
		entry.Mood = *decoded.Mood
	}
	return nil
}

// SavedAtTime parses the savedAt stamp.
func (entry Entry) SavedAtTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, entry.SavedAt)
}

// FormatSavedAt renders t the way savedAt is persisted.
func FormatSavedAt(t time.Time) string {
	return t.UTC().Format(savedAtLayout)
}

// Database is the whole persisted journal. Stored entries that do not have
// the Entry shape are carried as raw JSON so a save writes them back.
type Database struct {
	Entries map[DateKey]Entry `json:"entries"`

	unreadable map[DateKey]json.RawMessage
}

// NewDatabase returns an empty database.
func NewDatabase() Database {
	return Database{Entries: map[DateKey]Entry{}}
}

// Clone copies the entries map so the result can be mutated independently.
func (db Database) Clone() Database {
	cloned := Database{Entries: make(map[DateKey]Entry, len(db.Entries))}
	for key, entry := range db.Entries {
		cloned.Entries[key] = entry
	}
	if len(db.unreadable) > 0 {
		cloned.unreadable = make(map[DateKey]json.RawMessage, len(db.unreadable))
		for key, raw := range db.unreadable {
			cloned.unreadable[key] = raw
		}
	}
	return cloned
}

// Lookup returns the entry stored at key.
func (db Database) Lookup(key DateKey) (Entry, bool) {
	entry, ok := db.Entries[key]
	return entry, ok
}

// Len reports the number of stored days, unreadable ones included.
func (db Database) Len() int {
	return len(db.Entries) + len(db.unreadable)
}

// Unreadable lists the stored days whose entries could not be decoded.
func (db Database) Unreadable() []DateKey {
	keys := make([]DateKey, 0, len(db.unreadable))
	for key := range db.unreadable {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func (db Database) has(key DateKey) bool {
	if _, ok := db.Entries[key]; ok {
		return true
	}
	_, ok := db.unreadable[key]
	return ok
}

// HistoryItem pairs a date key with its entry.
type HistoryItem struct {
	Date  DateKey
	Entry Entry
}

// TodayView is what the editor shows for the current day.
type TodayView struct {
	Date    DateKey
	Entry   Entry
	Found   bool
	Current time.Time
}

// ImportResult summarizes a merge-on-import.
type ImportResult struct {
	Imported int
	Total    int
}
