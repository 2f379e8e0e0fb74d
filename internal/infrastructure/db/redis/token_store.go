package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/enterprisepro/erp-portal/internal/infrastructure/db/sessionkey"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// TokenStore persists session tokens in a Redis hash per session.
// Key format: portal:session:<blake2b(session_id)>
// The TTL is renewed on every write so idle sessions age out.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
// A non-positive ttl falls back to defaultSessionTTL.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &TokenStore{client: client, ttl: ttl}
}

func (s *TokenStore) Get(ctx context.Context, sessionID, name string) (string, error) {
	v, err := s.client.HGet(ctx, key(sessionID), name).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis token get: %w", err)
	}
	return v, nil
}

func (s *TokenStore) Set(ctx context.Context, sessionID, name, value string) error {
	k := key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, name, value)
		pipe.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis token set: %w", err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis token clear: %w", err)
	}
	return nil
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func key(sessionID string) string {
	return "portal:session:" + sessionkey.Hash(sessionID)
}
