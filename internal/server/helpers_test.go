package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/dagbok/internal/journal"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const testNamespace = "koddagbok.server-test"

var errWriteRejected = errors.New("write rejected")

type memoryBackend struct {
	values   map[string]string
	writeErr error
}

func (b *memoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := b.values[key]
	return value, ok, nil
}

func (b *memoryBackend) Set(_ context.Context, key, value string) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.values[key] = value
	return nil
}

var testNow = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func mustJournal(t *testing.T, backend *memoryBackend) *journal.Store {
	t.Helper()
	store, err := journal.NewStore(journal.StoreConfig{
		Backend:     backend,
		Namespace:   testNamespace,
		Clock:       func() time.Time { return testNow },
		Location:    time.UTC,
		PickThought: func(int) int { return 2 },
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build journal store: %v", err)
	}
	return store
}

func mustRouter(t *testing.T, backend *memoryBackend) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler, err := NewHTTPHandler(Dependencies{
		Journal:      mustJournal(t, backend),
		HistoryLimit: 2,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func newBackend(blob string) *memoryBackend {
	backend := &memoryBackend{values: map[string]string{}}
	if blob != "" {
		backend.values[testNamespace] = blob
	}
	return backend
}
