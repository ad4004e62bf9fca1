package store

import (
	"context"
	"sync"

	"github.com/fxdash/dashboard/internal/model"
)

// MemoryStore implements Store in memory. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu    sync.RWMutex
	ds    *model.Dataset
	saves int
}

// NewMemoryStore creates a store holding a copy of ds. A nil ds starts empty.
func NewMemoryStore(ds *model.Dataset) *MemoryStore {
	return &MemoryStore{ds: ds.Clone()}
}

func (s *MemoryStore) Load(_ context.Context) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Hand out a copy to avoid external mutation.
	return s.ds.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, ds *model.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ds = ds.Clone()
	s.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
