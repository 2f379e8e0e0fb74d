package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/enterprisepro/erp-portal/internal/infrastructure/db/sessionkey"
)

// TokenStore provides session token persistence backed by SQLite.
type TokenStore struct {
	db *DB
}

// NewTokenStore creates a new SQLite-backed token store.
func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) Get(ctx context.Context, sessionID, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM portal_tokens WHERE session_id = ? AND name = ?",
		sessionkey.Hash(sessionID), name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return value, nil
}

func (s *TokenStore) Set(ctx context.Context, sessionID, name, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portal_tokens (session_id, name, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(session_id, name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		sessionkey.Hash(sessionID), name, value,
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM portal_tokens WHERE session_id = ?", sessionkey.Hash(sessionID),
	); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
