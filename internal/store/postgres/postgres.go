// Package postgres persists the state snapshot in a single-row JSONB
// table. The service layer already serializes writes, so one row with
// optimistic versioning is all the durability layer needs.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			id         INT PRIMARY KEY,
			version    BIGINT NOT NULL DEFAULT 0,
			state      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

func (s *Store) LoadState(ctx context.Context) (*domain.AppState, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT state FROM snapshots WHERE id = 1
	`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var state domain.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveState(ctx context.Context, state *domain.AppState) error {
	if state == nil {
		return store.ErrInvalidOperation
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, version, state, updated_at)
		VALUES (1, 1, $1, now())
		ON CONFLICT (id) DO UPDATE
		SET version = snapshots.version + 1,
		    state = EXCLUDED.state,
		    updated_at = now()
	`, raw)
	return err
}
