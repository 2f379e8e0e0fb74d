package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api/metrics"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// DefaultPendingThreshold is the backlog size above which pending orders are
// reported.
const DefaultPendingThreshold = 5

// DeriveAlerts turns current ERP state into advisory notifications using the
// default pending-order threshold.
func DeriveAlerts(items []domain.InventoryItem, invoices []domain.Invoice, orders []domain.SalesOrder, now time.Time) []domain.Notification {
	return deriveAlerts(items, invoices, orders, now, DefaultPendingThreshold)
}

func deriveAlerts(items []domain.InventoryItem, invoices []domain.Invoice, orders []domain.SalesOrder, now time.Time, pendingThreshold int) []domain.Notification {
	alerts := make([]domain.Notification, 0, 3)

	low := 0
	for _, it := range items {
		if it.BelowMinimum() {
			low++
		}
	}
	if low > 0 {
		alerts = append(alerts, domain.Notification{
			ID:        domain.AlertLowStock,
			Category:  domain.CategoryWarning,
			Title:     "Low Stock Alert",
			Message:   fmt.Sprintf("%d item(s) are below minimum stock level", low),
			CreatedAt: now,
			Action:    &domain.NotificationAction{Label: "View Items", Path: "/inventory/items"},
		})
	}

	overdue := 0
	for _, inv := range invoices {
		if inv.OverdueAt(now) {
			overdue++
		}
	}
	if overdue > 0 {
		alerts = append(alerts, domain.Notification{
			ID:        domain.AlertOverdueInvoices,
			Category:  domain.CategoryError,
			Title:     "Overdue Invoices",
			Message:   fmt.Sprintf("%d invoice(s) are overdue", overdue),
			CreatedAt: now,
			Action:    &domain.NotificationAction{Label: "View Invoices", Path: "/finance/invoices"},
		})
	}

	pending := 0
	for _, o := range orders {
		if o.Pending() {
			pending++
		}
	}
	if pending > pendingThreshold {
		alerts = append(alerts, domain.Notification{
			ID:        domain.AlertPendingOrders,
			Category:  domain.CategoryInfo,
			Title:     "Pending Orders",
			Message:   fmt.Sprintf("%d order(s) pending fulfillment", pending),
			CreatedAt: now,
			Action:    &domain.NotificationAction{Label: "View Orders", Path: "/sales-orders"},
		})
	}

	return alerts
}

// NotificationService keeps one notification center per session and refreshes
// it from the backend on demand.
type NotificationService struct {
	clients          ports.ERPClientFactory
	pendingThreshold int
	now              func() time.Time
	log              zerolog.Logger

	mu      sync.Mutex
	centers map[string]*notificationCenter
}

// NotificationOption configures a NotificationService.
type NotificationOption func(*NotificationService)

// WithPendingThreshold overrides DefaultPendingThreshold.
func WithPendingThreshold(n int) NotificationOption {
	return func(s *NotificationService) {
		if n >= 0 {
			s.pendingThreshold = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) NotificationOption {
	return func(s *NotificationService) { s.now = now }
}

func NewNotificationService(clients ports.ERPClientFactory, log zerolog.Logger, opts ...NotificationOption) *NotificationService {
	s := &NotificationService{
		clients:          clients,
		pendingThreshold: DefaultPendingThreshold,
		now:              time.Now,
		log:              log.With().Str("component", "notifications").Logger(),
		centers:          make(map[string]*notificationCenter),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Poll fetches the three alert sources concurrently and replaces the
// session's notifications with the derived alerts. A failing source is logged
// and contributes nothing. Read flags do not survive a poll.
//
// Session expiry is the one failure that is returned: the session has been
// torn down by then, so nothing is stored for it.
func (s *NotificationService) Poll(ctx context.Context, sessionID string) ([]domain.Notification, error) {
	src := s.clients.ForSession(sessionID)

	var (
		wg       sync.WaitGroup
		errs     = make([]error, 3)
		items    []domain.InventoryItem
		invoices []domain.Invoice
		orders   []domain.SalesOrder
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		items, errs[0] = fetch(ctx, s.log, "inventory", src.ListInventoryItems)
	}()
	go func() {
		defer wg.Done()
		invoices, errs[1] = fetch(ctx, s.log, "invoices", src.ListInvoices)
	}()
	go func() {
		defer wg.Done()
		orders, errs[2] = fetch(ctx, s.log, "orders", src.ListSalesOrders)
	}()
	wg.Wait()

	for _, err := range errs {
		if errors.Is(err, domain.ErrSessionExpired) {
			return nil, err
		}
	}

	// Unwatched or torn down while fetching.
	if ctx.Err() != nil {
		return nil, nil
	}

	alerts := deriveAlerts(items, invoices, orders, s.now(), s.pendingThreshold)
	s.center(sessionID).replace(alerts)

	s.log.Debug().Int("alerts", len(alerts)).Msg("notifications refreshed")
	return s.List(sessionID), nil
}

func fetch[T any](ctx context.Context, log zerolog.Logger, source string, list func(context.Context) ([]T, error)) ([]T, error) {
	out, err := list(ctx)
	if err != nil {
		metrics.NotificationFetchesTotal.WithLabelValues(source, "error").Inc()
		log.Warn().Err(err).Str("source", source).Msg("alert source fetch failed")
		return nil, err
	}
	metrics.NotificationFetchesTotal.WithLabelValues(source, "ok").Inc()
	return out, nil
}

func (s *NotificationService) center(sessionID string) *notificationCenter {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.centers[sessionID]
	if !ok {
		c = &notificationCenter{}
		s.centers[sessionID] = c
	}
	return c
}

// lookup returns the session's center without creating one.
func (s *NotificationService) lookup(sessionID string) (*notificationCenter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.centers[sessionID]
	return c, ok
}

func (s *NotificationService) List(sessionID string) []domain.Notification {
	c, ok := s.lookup(sessionID)
	if !ok {
		return []domain.Notification{}
	}
	return c.list()
}

func (s *NotificationService) UnreadCount(sessionID string) int {
	c, ok := s.lookup(sessionID)
	if !ok {
		return 0
	}
	return c.unread()
}

func (s *NotificationService) MarkRead(sessionID, id string) error {
	c, ok := s.lookup(sessionID)
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return c.markRead(id)
}

func (s *NotificationService) MarkAllRead(sessionID string) {
	if c, ok := s.lookup(sessionID); ok {
		c.markAllRead()
	}
}

// Add prepends n to the session's list. Missing ID and timestamp are filled
// in; the notification always starts unread.
func (s *NotificationService) Add(sessionID string, n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if n.Category == "" {
		n.Category = domain.CategoryInfo
	}
	n.Read = false
	s.center(sessionID).add(n)
	return n
}

func (s *NotificationService) Remove(sessionID, id string) error {
	c, ok := s.lookup(sessionID)
	if !ok {
		return domain.ErrNotificationNotFound
	}
	return c.remove(id)
}

// tracked reports how many sessions hold a notification center.
func (s *NotificationService) tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.centers)
}

// Forget drops everything held for the session.
func (s *NotificationService) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.centers, sessionID)
	s.mu.Unlock()
}

type notificationCenter struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (c *notificationCenter) list() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

func (c *notificationCenter) unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (c *notificationCenter) replace(items []domain.Notification) {
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

func (c *notificationCenter) add(n domain.Notification) {
	c.mu.Lock()
	c.items = append([]domain.Notification{n}, c.items...)
	c.mu.Unlock()
}

func (c *notificationCenter) markRead(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (c *notificationCenter) markAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].Read = true
	}
}

func (c *notificationCenter) remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}
