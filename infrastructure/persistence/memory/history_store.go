// Package memory provides an in-memory repository used in tests and when
// durability is switched off.
package memory

import (
	"context"
	"sync"

	"github.com/BeadW/vyb-web-sub000/domain/core/aggregates"
)

// HistoryStore implements ports.HistoryRepository in process memory
type HistoryStore struct {
	mu    sync.RWMutex
	state *aggregates.HistoryState
	saves int
}

// NewHistoryStore creates an empty in-memory store
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Save keeps the latest state snapshot
func (s *HistoryStore) Save(ctx context.Context, state aggregates.HistoryState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &state
	s.saves++
	return nil
}

// Load returns the last saved state, nil when nothing was saved
func (s *HistoryStore) Load(ctx context.Context) (*aggregates.HistoryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, nil
	}
	state := *s.state
	return &state, nil
}

// SaveCount reports how many saves happened, for tests that wait on the
// asynchronous persistence path.
func (s *HistoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
