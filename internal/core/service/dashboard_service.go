package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// DashboardService aggregates the home and admin dashboards. A source that
// fails to load counts as empty, unless the session itself has expired.
type DashboardService struct {
	clients ports.ERPClientFactory
	log     zerolog.Logger
}

func NewDashboardService(clients ports.ERPClientFactory, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		clients: clients,
		log:     log.With().Str("component", "dashboard").Logger(),
	}
}

// SummarizeDashboard computes the home page figures. totalOrders is the
// backend's count; orders may be just its first page.
func SummarizeDashboard(orders []domain.SalesOrder, items []domain.InventoryItem, totalOrders, customers, products int) domain.DashboardSummary {
	sum := domain.DashboardSummary{
		TotalOrders:    totalOrders,
		TotalCustomers: customers,
		TotalProducts:  products,
	}
	for _, o := range orders {
		if o.Pending() {
			sum.PendingOrders++
		}
		if o.Realized() {
			sum.TotalRevenue += float64(o.TotalAmount)
		}
	}
	for _, it := range items {
		if it.BelowMinimum() {
			sum.LowStockItems++
		}
	}
	return sum
}

// SummarizeUsers computes the user figures of the admin dashboard.
func SummarizeUsers(users []domain.CurrentUser) domain.AdminStats {
	stats := domain.AdminStats{TotalUsers: len(users)}
	for _, u := range users {
		if u.IsActive {
			stats.ActiveUsers++
		}
		if u.Role == domain.RoleAdmin {
			stats.AdminUsers++
		}
	}
	return stats
}

func (s *DashboardService) Summary(ctx context.Context, sessionID string) (domain.DashboardSummary, error) {
	client := s.clients.ForSession(sessionID)

	var (
		wg                               sync.WaitGroup
		errs                             = make([]error, 4)
		orders                           []domain.SalesOrder
		items                            []domain.InventoryItem
		totalOrders, customers, products int
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		orders, totalOrders, errs[0] = listOf[domain.SalesOrder](ctx, client, "orders")
	}()
	go func() {
		defer wg.Done()
		items, errs[1] = client.ListInventoryItems(ctx)
	}()
	go func() {
		defer wg.Done()
		customers, errs[2] = count(ctx, client, "customers")
	}()
	go func() {
		defer wg.Done()
		products, errs[3] = count(ctx, client, "products")
	}()
	wg.Wait()

	if err := s.settle(errs); err != nil {
		return domain.DashboardSummary{}, err
	}
	return SummarizeDashboard(orders, items, totalOrders, customers, products), nil
}

func (s *DashboardService) AdminStats(ctx context.Context, sessionID string) (domain.AdminStats, error) {
	client := s.clients.ForSession(sessionID)

	var (
		wg                          sync.WaitGroup
		errs                        = make([]error, 4)
		users                       []domain.CurrentUser
		orders, products, customers int
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		users, _, errs[0] = listOf[domain.CurrentUser](ctx, client, "users")
	}()
	go func() {
		defer wg.Done()
		orders, errs[1] = count(ctx, client, "orders")
	}()
	go func() {
		defer wg.Done()
		products, errs[2] = count(ctx, client, "products")
	}()
	go func() {
		defer wg.Done()
		customers, errs[3] = count(ctx, client, "customers")
	}()
	wg.Wait()

	if err := s.settle(errs); err != nil {
		return domain.AdminStats{}, err
	}
	stats := SummarizeUsers(users)
	stats.TotalOrders = orders
	stats.TotalProducts = products
	stats.TotalCustomers = customers
	return stats, nil
}

// settle logs partial failures and surfaces only session expiry.
func (s *DashboardService) settle(errs []error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		s.log.Warn().Err(err).Msg("dashboard source failed")
	}
	return nil
}

func count(ctx context.Context, client ports.ERPClient, resource string) (int, error) {
	page, err := client.List(ctx, resource, nil)
	if err != nil {
		return 0, err
	}
	return page.Count, nil
}

// listOf decodes the first page of resource along with the backend's total
// count.
func listOf[T any](ctx context.Context, client ports.ERPClient, resource string) ([]T, int, error) {
	page, err := client.List(ctx, resource, nil)
	if err != nil {
		return nil, 0, err
	}
	out := make([]T, 0, len(page.Results))
	for _, raw := range page.Results {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", resource, err)
		}
		out = append(out, v)
	}
	return out, page.Count, nil
}
