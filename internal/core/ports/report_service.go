package ports

import (
	"context"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// ReportService builds the report pages of a session.
type ReportService interface {
	Sales(ctx context.Context, sessionID string, period domain.ReportPeriod) (domain.SalesReport, error)
	Inventory(ctx context.Context, sessionID string) (domain.InventoryReport, error)
	Financial(ctx context.Context, sessionID string, period domain.ReportPeriod) (domain.FinancialReport, error)
}
