package journal

import (
	"bytes"
	"encoding/json"
	"errors"
)

const entriesField = "entries"

var (
	errNotObject       = errors.New("value is not a JSON object")
	errEntriesMissing  = errors.New("entries field is missing")
	errEntriesNotValid = errors.New("entries field is not an object")
)

// DecodeImport checks raw against the database shape and returns the decoded
// database. Top-level fields other than entries are ignored.
func DecodeImport(raw []byte) (Database, error) {
	entryValues, err := decodeEntryValues(raw)
	if err != nil {
		return Database{}, err
	}

	db := NewDatabase()
	for key, rawEntry := range entryValues {
		entry, err := decodeEntry(key, rawEntry)
		if err != nil {
			return Database{}, err
		}
		db.Entries[DateKey(key)] = entry
	}
	return db, nil
}

// decodeStored parses a persisted blob. An unusable document degrades to an
// empty database and the returned error only describes why. Entries without
// the Entry shape are kept aside as raw JSON instead of failing the load.
func decodeStored(raw string) (Database, error) {
	entryValues, err := decodeEntryValues([]byte(raw))
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) && formatErr.Reason == "missing_entries" {
			return NewDatabase(), nil
		}
		return NewDatabase(), err
	}

	db := NewDatabase()
	for key, rawEntry := range entryValues {
		entry, err := decodeEntry(key, rawEntry)
		if err != nil {
			if db.unreadable == nil {
				db.unreadable = map[DateKey]json.RawMessage{}
			}
			db.unreadable[DateKey(key)] = rawEntry
			continue
		}
		db.Entries[DateKey(key)] = entry
	}
	return db, nil
}

func decodeEntryValues(raw []byte) (map[string]json.RawMessage, error) {
	if !json.Valid(raw) {
		return nil, newFormatError("invalid_json", nil)
	}
	if !isJSONObject(raw) {
		return nil, newFormatError("not_object", errNotObject)
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, newFormatError("not_object", err)
	}
	rawEntries, ok := document[entriesField]
	if !ok {
		return nil, newFormatError("missing_entries", errEntriesMissing)
	}
	if !isJSONObject(rawEntries) {
		return nil, newFormatError("entries_not_object", errEntriesNotValid)
	}

	var entryValues map[string]json.RawMessage
	if err := json.Unmarshal(rawEntries, &entryValues); err != nil {
		return nil, newFormatError("entries_not_object", err)
	}
	return entryValues, nil
}

func decodeEntry(key string, rawEntry json.RawMessage) (Entry, error) {
	if !isJSONObject(rawEntry) {
		return Entry{}, newFormatError("entry_not_object:"+key, errNotObject)
	}
	var entry Entry
	if err := json.Unmarshal(rawEntry, &entry); err != nil {
		return Entry{}, newFormatError("entry_shape:"+key, err)
	}
	return entry, nil
}

// persistedDocument is the written form of a Database.
type persistedDocument struct {
	Entries map[DateKey]any `json:"entries"`
}

func encodeCompact(db Database) ([]byte, error) {
	return json.Marshal(persisted(db))
}

func encodePretty(db Database) ([]byte, error) {
	return json.MarshalIndent(persisted(db), "", "  ")
}

func persisted(db Database) persistedDocument {
	entries := make(map[DateKey]any, db.Len())
	for key, raw := range db.unreadable {
		entries[key] = raw
	}
	for key, entry := range db.Entries {
		entries[key] = entry
	}
	return persistedDocument{Entries: entries}
}

func isJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
