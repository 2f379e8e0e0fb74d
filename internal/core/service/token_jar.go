package service

import (
	"context"
	"fmt"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// TokenJars scopes a TokenStore to individual sessions.
type TokenJars struct {
	store ports.TokenStore
}

func NewTokenJars(store ports.TokenStore) *TokenJars {
	return &TokenJars{store: store}
}

func (j *TokenJars) Jar(sessionID string) ports.TokenJar {
	return &tokenJar{store: j.store, sessionID: sessionID}
}

type tokenJar struct {
	store     ports.TokenStore
	sessionID string
}

func (j *tokenJar) AccessToken(ctx context.Context) (string, error) {
	return j.store.Get(ctx, j.sessionID, domain.AccessTokenKey)
}

func (j *tokenJar) RefreshToken(ctx context.Context) (string, error) {
	return j.store.Get(ctx, j.sessionID, domain.RefreshTokenKey)
}

func (j *tokenJar) StoreAccess(ctx context.Context, access string) error {
	if err := j.store.Set(ctx, j.sessionID, domain.AccessTokenKey, access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	return nil
}

func (j *tokenJar) StorePair(ctx context.Context, pair domain.TokenPair) error {
	if err := j.store.Set(ctx, j.sessionID, domain.AccessTokenKey, pair.Access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := j.store.Set(ctx, j.sessionID, domain.RefreshTokenKey, pair.Refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (j *tokenJar) Clear(ctx context.Context) error {
	return j.store.Clear(ctx, j.sessionID)
}
