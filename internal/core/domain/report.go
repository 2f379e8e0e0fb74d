package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid report period")

// ReportPeriod bounds how far back a report looks.
type ReportPeriod string

const (
	PeriodWeek    ReportPeriod = "week"
	PeriodMonth   ReportPeriod = "month"
	PeriodQuarter ReportPeriod = "quarter"
	PeriodYear    ReportPeriod = "year"
	PeriodAll     ReportPeriod = "all"

	DefaultReportPeriod = PeriodMonth
)

var (
	SalesPeriods     = []ReportPeriod{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll}
	FinancialPeriods = []ReportPeriod{PeriodMonth, PeriodQuarter, PeriodYear, PeriodAll}
)

// ParseReportPeriod validates v against allowed. An empty value selects
// DefaultReportPeriod.
func ParseReportPeriod(v string, allowed []ReportPeriod) (ReportPeriod, error) {
	if v == "" {
		return DefaultReportPeriod, nil
	}
	for _, p := range allowed {
		if string(p) == v {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, v)
}

// Since returns the first instant covered by the period. PeriodAll covers
// everything and returns the zero time.
func (p ReportPeriod) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	case PeriodQuarter:
		return now.AddDate(0, -3, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// Covers reports whether t falls inside the period ending at now.
func (p ReportPeriod) Covers(t, now time.Time) bool {
	return !t.Before(p.Since(now))
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SalesReport aggregates realized orders over a period. OrdersByStatus spans
// every order regardless of period.
type SalesReport struct {
	Period            ReportPeriod     `json:"period"`
	TotalRevenue      float64          `json:"total_revenue"`
	TotalOrders       int              `json:"total_orders"`
	AverageOrderValue float64          `json:"average_order_value"`
	RevenueByMonth    []MonthlyRevenue `json:"revenue_by_month"`
	RevenueByCustomer []NamedValue     `json:"revenue_by_customer"`
	OrdersByStatus    []StatusCount    `json:"orders_by_status"`
}

type StockGroup struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Value    float64 `json:"value"`
}

type LowStockLine struct {
	InventoryItem
	ProductName   string  `json:"product_name"`
	WarehouseName string  `json:"warehouse_name"`
	UnitPrice     float64 `json:"unit_price"`
	Value         float64 `json:"value"`
}

type StockDistribution struct {
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

// InventoryReport values stock at product unit prices.
type InventoryReport struct {
	TotalItems        int               `json:"total_items"`
	TotalValue        float64           `json:"total_value"`
	Warehouses        int               `json:"warehouses"`
	LowStockItems     []LowStockLine    `json:"low_stock_items"`
	StockByWarehouse  []StockGroup      `json:"stock_by_warehouse"`
	StockByProduct    []StockGroup      `json:"stock_by_product"`
	StockDistribution StockDistribution `json:"stock_distribution"`
}

type ProfitAndLoss struct {
	Revenue        float64          `json:"revenue"`
	Expenses       float64          `json:"expenses"`
	NetIncome      float64          `json:"net_income"`
	RevenueByMonth []MonthlyRevenue `json:"revenue_by_month"`
}

type BalanceSheet struct {
	Assets      float64 `json:"assets"`
	Liabilities float64 `json:"liabilities"`
	Equity      float64 `json:"equity"`
}

// FinancialReport is a profit and loss statement over a period plus a
// balance sheet over the whole ledger.
type FinancialReport struct {
	Period       ReportPeriod  `json:"period"`
	ProfitLoss   ProfitAndLoss `json:"profit_loss"`
	BalanceSheet BalanceSheet  `json:"balance_sheet"`
}
