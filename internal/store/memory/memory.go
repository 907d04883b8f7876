// Package memory keeps the state snapshot in process memory. It is the
// fallback when no database is configured and the fixture store for
// tests.
package memory

import (
	"context"
	"sync"

	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	state *domain.AppState
}

func New() *Store {
	return &Store{}
}

// NewWithState seeds the store, used by tests and state import.
func NewWithState(state *domain.AppState) *Store {
	return &Store{state: state.Clone()}
}

func (s *Store) LoadState(ctx context.Context) (*domain.AppState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, store.ErrNotFound
	}
	return s.state.Clone(), nil
}

func (s *Store) SaveState(ctx context.Context, state *domain.AppState) error {
	if state == nil {
		return store.ErrInvalidOperation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}
