package ports

import (
	"context"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// DashboardService computes the dashboard figures of a session.
type DashboardService interface {
	Summary(ctx context.Context, sessionID string) (domain.DashboardSummary, error)
	AdminStats(ctx context.Context, sessionID string) (domain.AdminStats, error)
}
