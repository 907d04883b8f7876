package store

import (
	"context"
	"errors"

	"jardinerp/backend/internal/domain"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrNotInitialized   = errors.New("system not initialized")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotRevertible    = errors.New("transaction cannot be reverted")
)

// Repository persists the whole application state as one snapshot.
// The service layer mutates a working copy under its own lock and
// hands the committed state here; the repository never interprets it.
type Repository interface {
	LoadState(ctx context.Context) (*domain.AppState, error)
	SaveState(ctx context.Context, state *domain.AppState) error
}
