package ports

import (
	"context"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// NotificationService keeps the advisory alerts of every session.
type NotificationService interface {
	Poll(ctx context.Context, sessionID string) ([]domain.Notification, error)
	List(sessionID string) []domain.Notification
	UnreadCount(sessionID string) int
	MarkRead(sessionID, id string) error
	MarkAllRead(sessionID string)
	Add(sessionID string, n domain.Notification) domain.Notification
	Remove(sessionID, id string) error
	Forget(sessionID string)
}
