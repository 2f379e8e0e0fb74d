package ports

import (
	"context"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// TokenStore is durable per-session key/value storage for bearer tokens.
// Get returns an empty string and a nil error when the key is absent.
type TokenStore interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Clear(ctx context.Context, sessionID string) error
}

// TokenJar is a TokenStore scoped to a single session.
type TokenJar interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	StoreAccess(ctx context.Context, access string) error
	StorePair(ctx context.Context, pair domain.TokenPair) error
	Clear(ctx context.Context) error
}

// JarProvider hands out the jar of a session.
type JarProvider interface {
	Jar(sessionID string) TokenJar
}
