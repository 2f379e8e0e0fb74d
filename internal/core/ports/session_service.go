package ports

import (
	"context"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// SessionService is the single source of truth for who is logged in.
type SessionService interface {
	Restore(ctx context.Context, sessionID string) *domain.Session
	Login(ctx context.Context, sessionID, username, password string) domain.LoginResult
	Logout(ctx context.Context, sessionID string)
	Expire(ctx context.Context, sessionID string)
	Current(sessionID string) *domain.CurrentUser
	IsAuthenticated(sessionID string) bool
	Status(ctx context.Context, sessionID string) domain.SessionStatus
}

// PollScheduler starts and stops background polling for a session.
type PollScheduler interface {
	Watch(sessionID string)
	Unwatch(sessionID string)
}
