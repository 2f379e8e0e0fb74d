// Package memory provides a process-local TokenStore for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/enterprisepro/erp-portal/internal/infrastructure/db/sessionkey"
)

// TokenStore keeps tokens in a map guarded by a RWMutex. Contents are lost on
// restart.
type TokenStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{sessions: make(map[string]map[string]string)}
}

func (s *TokenStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionkey.Hash(sessionID)][key], nil
}

func (s *TokenStore) Set(_ context.Context, sessionID, key, value string) error {
	h := sessionkey.Hash(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.sessions[h]
	if !ok {
		fields = make(map[string]string, 2)
		s.sessions[h] = fields
	}
	fields[key] = value
	return nil
}

func (s *TokenStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionkey.Hash(sessionID))
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *TokenStore) Ping(context.Context) error { return nil }
