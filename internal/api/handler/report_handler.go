package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

type ReportHandler struct {
	reports ports.ReportService
}

func NewReportHandler(reports ports.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Sales reports realized revenue over a period.
//
// @Summary      Sales report
// @Tags         reports
// @Produce      json
// @Param        period  query     string  false  "week, month, quarter, year or all"  default(month)
// @Success      200     {object}  domain.SalesReport
// @Failure      400     {object}  errorResponse
// @Router       /reports/sales [get]
func (h *ReportHandler) Sales(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	period, err := domain.ParseReportPeriod(c.QueryParam("period"), domain.SalesPeriods)
	if err != nil {
		return err
	}
	report, err := h.reports.Sales(c.Request().Context(), sid, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Inventory reports stock value and low stock lines.
//
// @Summary      Inventory report
// @Tags         reports
// @Produce      json
// @Success      200  {object}  domain.InventoryReport
// @Router       /reports/inventory [get]
func (h *ReportHandler) Inventory(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Inventory(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// Financial reports profit and loss over a period and the balance sheet.
//
// @Summary      Financial report
// @Tags         reports
// @Produce      json
// @Param        period  query     string  false  "month, quarter, year or all"  default(month)
// @Success      200     {object}  domain.FinancialReport
// @Failure      400     {object}  errorResponse
// @Router       /reports/financial [get]
func (h *ReportHandler) Financial(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	period, err := domain.ParseReportPeriod(c.QueryParam("period"), domain.FinancialPeriods)
	if err != nil {
		return err
	}
	report, err := h.reports.Financial(c.Request().Context(), sid, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
