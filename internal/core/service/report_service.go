package service

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

const (
	topCustomers   = 10
	topProducts    = 10
	unknownName    = "Unknown"
	monthKeyLayout = "2006-01"
)

// ReportService builds the sales, inventory and financial reports from the
// first page of each backing collection. Unlike the dashboards, a report
// fails as a whole when any of its sources fails.
type ReportService struct {
	clients ports.ERPClientFactory
	now     func() time.Time
	log     zerolog.Logger
}

// ReportOption configures a ReportService.
type ReportOption func(*ReportService)

// WithReportClock replaces time.Now, for tests.
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(clients ports.ERPClientFactory, log zerolog.Logger, opts ...ReportOption) *ReportService {
	s := &ReportService{
		clients: clients,
		now:     time.Now,
		log:     log.With().Str("component", "reports").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) Sales(ctx context.Context, sessionID string, period domain.ReportPeriod) (domain.SalesReport, error) {
	client := s.clients.ForSession(sessionID)

	var (
		wg        sync.WaitGroup
		errs      = make([]error, 2)
		orders    []domain.SalesOrder
		customers []domain.Customer
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		orders, _, errs[0] = listOf[domain.SalesOrder](ctx, client, "orders")
	}()
	go func() {
		defer wg.Done()
		customers, _, errs[1] = listOf[domain.Customer](ctx, client, "customers")
	}()
	wg.Wait()

	if err := s.firstError("sales", errs); err != nil {
		return domain.SalesReport{}, err
	}
	return BuildSalesReport(orders, customers, period, s.now()), nil
}

func (s *ReportService) Inventory(ctx context.Context, sessionID string) (domain.InventoryReport, error) {
	client := s.clients.ForSession(sessionID)

	var (
		wg         sync.WaitGroup
		errs       = make([]error, 3)
		items      []domain.InventoryItem
		products   []domain.Product
		warehouses []domain.Warehouse
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		items, _, errs[0] = listOf[domain.InventoryItem](ctx, client, "inventory-items")
	}()
	go func() {
		defer wg.Done()
		products, _, errs[1] = listOf[domain.Product](ctx, client, "products")
	}()
	go func() {
		defer wg.Done()
		warehouses, _, errs[2] = listOf[domain.Warehouse](ctx, client, "warehouses")
	}()
	wg.Wait()

	if err := s.firstError("inventory", errs); err != nil {
		return domain.InventoryReport{}, err
	}
	return BuildInventoryReport(items, products, warehouses), nil
}

func (s *ReportService) Financial(ctx context.Context, sessionID string, period domain.ReportPeriod) (domain.FinancialReport, error) {
	client := s.clients.ForSession(sessionID)

	var (
		wg       sync.WaitGroup
		errs     = make([]error, 2)
		entries  []domain.LedgerEntry
		accounts []domain.Account
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		entries, _, errs[0] = listOf[domain.LedgerEntry](ctx, client, "ledger")
	}()
	go func() {
		defer wg.Done()
		accounts, _, errs[1] = listOf[domain.Account](ctx, client, "accounts")
	}()
	wg.Wait()

	if err := s.firstError("financial", errs); err != nil {
		return domain.FinancialReport{}, err
	}
	return BuildFinancialReport(entries, accounts, period, s.now()), nil
}

// firstError prefers session expiry so the caller is sent to the login page.
func (s *ReportService) firstError(report string, errs []error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	if first != nil {
		s.log.Warn().Err(first).Str("report", report).Msg("report source failed")
	}
	return first
}

// BuildSalesReport aggregates fulfilled and invoiced orders dated inside the
// period. Orders with no readable date are left out of the totals.
func BuildSalesReport(orders []domain.SalesOrder, customers []domain.Customer, period domain.ReportPeriod, now time.Time) domain.SalesReport {
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	report := domain.SalesReport{Period: period}
	byMonth := make(map[string]float64)
	byCustomer := make(map[string]float64)
	byStatus := make(map[string]int)
	var statusOrder []string

	for _, o := range orders {
		status := o.Status
		if status == "" {
			status = domain.OrderDraft
		}
		if _, seen := byStatus[status]; !seen {
			statusOrder = append(statusOrder, status)
		}
		byStatus[status]++

		date, ok := o.Date()
		if !ok || !o.Realized() || !period.Covers(date, now) {
			continue
		}
		amount := float64(o.TotalAmount)
		report.TotalRevenue += amount
		report.TotalOrders++
		byMonth[date.Format(monthKeyLayout)] += amount
		byCustomer[customerName(o, names)] += amount
	}

	if report.TotalOrders > 0 {
		report.AverageOrderValue = report.TotalRevenue / float64(report.TotalOrders)
	}
	report.RevenueByMonth = monthly(byMonth)
	report.RevenueByCustomer = ranked(byCustomer, topCustomers)

	report.OrdersByStatus = make([]domain.StatusCount, 0, len(statusOrder))
	for _, status := range statusOrder {
		report.OrdersByStatus = append(report.OrdersByStatus, domain.StatusCount{
			Status: strings.ToUpper(status),
			Count:  byStatus[status],
		})
	}
	return report
}

func customerName(o domain.SalesOrder, names map[int64]string) string {
	if name := names[o.Customer]; name != "" {
		return name
	}
	if o.CustomerName != "" {
		return o.CustomerName
	}
	return unknownName
}

// BuildInventoryReport values every stock line at its product's unit price.
// A line below its minimum is low stock; one at zero is out of stock.
func BuildInventoryReport(items []domain.InventoryItem, products []domain.Product, warehouses []domain.Warehouse) domain.InventoryReport {
	productByID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}
	warehouseName := make(map[int64]string, len(warehouses))
	for _, w := range warehouses {
		warehouseName[w.ID] = w.Name
	}

	report := domain.InventoryReport{
		TotalItems:    len(items),
		Warehouses:    len(warehouses),
		LowStockItems: []domain.LowStockLine{},
	}
	byWarehouse := newStockGroups()
	byProduct := newStockGroups()

	for _, it := range items {
		product, ok := productByID[it.Product]
		productName := unknownName
		if ok && product.Name != "" {
			productName = product.Name
		}
		whName := unknownName
		if name := warehouseName[it.Warehouse]; name != "" {
			whName = name
		}
		unitPrice := float64(product.UnitPrice)
		value := float64(it.Quantity) * unitPrice
		report.TotalValue += value

		switch {
		case it.Quantity == 0:
			report.StockDistribution.OutOfStock++
		case it.BelowMinimum():
			report.StockDistribution.LowStock++
		default:
			report.StockDistribution.InStock++
		}
		if it.BelowMinimum() {
			report.LowStockItems = append(report.LowStockItems, domain.LowStockLine{
				InventoryItem: it,
				ProductName:   productName,
				WarehouseName: whName,
				UnitPrice:     unitPrice,
				Value:         value,
			})
		}

		byWarehouse.add(whName, it.Quantity, value)
		byProduct.add(productName, it.Quantity, value)
	}

	slices.SortStableFunc(report.LowStockItems, func(a, b domain.LowStockLine) int {
		return cmp.Compare(a.Quantity, b.Quantity)
	})
	report.StockByWarehouse = byWarehouse.ranked(0)
	report.StockByProduct = byProduct.ranked(topProducts)
	return report
}

// BuildFinancialReport computes profit and loss from ledger entries inside
// the period and the balance sheet from the whole ledger. Entries on unknown
// accounts are ignored. Balance sheet figures never go below zero.
func BuildFinancialReport(entries []domain.LedgerEntry, accounts []domain.Account, period domain.ReportPeriod, now time.Time) domain.FinancialReport {
	accountType := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		accountType[a.ID] = a.AccountType
	}

	report := domain.FinancialReport{Period: period}
	pl := &report.ProfitLoss
	byMonth := make(map[string]float64)
	var assets, liabilities, equity float64

	for _, e := range entries {
		kind, ok := accountType[e.Account]
		if !ok {
			continue
		}

		switch kind {
		case domain.AccountAsset:
			assets += e.Signed(domain.TransactionDebit)
		case domain.AccountLiability:
			liabilities += e.Signed(domain.TransactionCredit)
		case domain.AccountEquity:
			equity += e.Signed(domain.TransactionCredit)
		}

		date, ok := e.Date()
		if !ok || !period.Covers(date, now) {
			continue
		}
		switch kind {
		case domain.AccountRevenue:
			amount := e.Signed(domain.TransactionCredit)
			pl.Revenue += amount
			byMonth[date.Format(monthKeyLayout)] += amount
		case domain.AccountExpense:
			pl.Expenses += e.Signed(domain.TransactionDebit)
		}
	}

	pl.NetIncome = pl.Revenue - pl.Expenses
	pl.RevenueByMonth = monthly(byMonth)
	report.BalanceSheet = domain.BalanceSheet{
		Assets:      math.Max(0, assets),
		Liabilities: math.Max(0, liabilities),
		Equity:      math.Max(0, equity),
	}
	return report
}

func monthly(byMonth map[string]float64) []domain.MonthlyRevenue {
	out := make([]domain.MonthlyRevenue, 0, len(byMonth))
	for month, revenue := range byMonth {
		out = append(out, domain.MonthlyRevenue{Month: month, Revenue: round2(revenue)})
	}
	slices.SortFunc(out, func(a, b domain.MonthlyRevenue) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out
}

// ranked sorts totals by value, highest first, keeping at most limit entries.
func ranked(totals map[string]float64, limit int) []domain.NamedValue {
	out := make([]domain.NamedValue, 0, len(totals))
	for name, v := range totals {
		out = append(out, domain.NamedValue{Name: name, Value: round2(v)})
	}
	slices.SortFunc(out, func(a, b domain.NamedValue) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type stockGroups map[string]*domain.StockGroup

func newStockGroups() stockGroups { return make(stockGroups) }

func (g stockGroups) add(name string, quantity int, value float64) {
	grp, ok := g[name]
	if !ok {
		grp = &domain.StockGroup{Name: name}
		g[name] = grp
	}
	grp.Quantity += quantity
	grp.Value += value
}

// ranked works like the package-level ranked, on stock value.
func (g stockGroups) ranked(limit int) []domain.StockGroup {
	out := make([]domain.StockGroup, 0, len(g))
	for _, grp := range g {
		out = append(out, domain.StockGroup{Name: grp.Name, Quantity: grp.Quantity, Value: round2(grp.Value)})
	}
	slices.SortFunc(out, func(a, b domain.StockGroup) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
