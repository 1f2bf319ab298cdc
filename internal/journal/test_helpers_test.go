package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

const testNamespace = "koddagbok.test"

type memoryBackend struct {
	mu       sync.Mutex
	values   map[string]string
	readErr  error
	writeErr error
	writes   int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: map[string]string{}}
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readErr != nil {
		return "", false, b.readErr
	}
	value, ok := b.values[key]
	return value, ok, nil
}

func (b *memoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.writes++
	b.values[key] = value
	return nil
}

var errBackendDown = errors.New("backend down")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

func mustStore(t *testing.T, backend Backend, now time.Time) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{
		Backend:     backend,
		Namespace:   testNamespace,
		Clock:       fixedClock(now),
		Location:    now.Location(),
		PickThought: func(int) int { return 0 },
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("unexpected store error: %v", err)
	}
	return store
}

func mustDateKey(t *testing.T, value string) DateKey {
	t.Helper()
	key, err := NewDateKey(value)
	if err != nil {
		t.Fatalf("unexpected date key error: %v", err)
	}
	return key
}

func sampleEntry(mood float64, thought string) Entry {
	return Entry{Mood: mood, Thought: thought, SavedAt: "2024-06-01T10:00:00.000Z", Version: EntryVersion}
}
