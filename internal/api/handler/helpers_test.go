package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/api/middleware"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Session stub
// ---------------------------------------------------------------------------

type stubSessions struct {
	loginFn   func(username, password string) domain.LoginResult
	loggedOut []string
}

func (s *stubSessions) Restore(_ context.Context, sid string) *domain.Session {
	return &domain.Session{ID: sid}
}

func (s *stubSessions) Login(_ context.Context, _ string, username, password string) domain.LoginResult {
	return s.loginFn(username, password)
}

func (s *stubSessions) Logout(_ context.Context, sid string) {
	s.loggedOut = append(s.loggedOut, sid)
}

func (s *stubSessions) Expire(context.Context, string)         {}
func (s *stubSessions) Current(string) *domain.CurrentUser     { return nil }
func (s *stubSessions) IsAuthenticated(string) bool            { return false }
func (s *stubSessions) Status(context.Context, string) domain.SessionStatus {
	return domain.SessionStatus{}
}

// ---------------------------------------------------------------------------
// ERP client stub
// ---------------------------------------------------------------------------

type actionCall struct {
	resource, id, action string
	body                 json.RawMessage
}

type stubClient struct {
	actions   []actionCall
	actionErr error
	lastQuery url.Values
}

func (c *stubClient) ListInventoryItems(context.Context) ([]domain.InventoryItem, error) {
	return nil, nil
}
func (c *stubClient) ListInvoices(context.Context) ([]domain.Invoice, error) { return nil, nil }
func (c *stubClient) ListSalesOrders(context.Context) ([]domain.SalesOrder, error) {
	return nil, nil
}

func (c *stubClient) List(_ context.Context, _ string, query url.Values) (*ports.Page, error) {
	c.lastQuery = query
	return &ports.Page{Results: []json.RawMessage{json.RawMessage(`{"id":1}`)}, Count: 1}, nil
}

func (c *stubClient) Get(context.Context, string, string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":1}`), nil
}

func (c *stubClient) Create(_ context.Context, _ string, body json.RawMessage) (json.RawMessage, error) {
	return body, nil
}

func (c *stubClient) Update(_ context.Context, _, _ string, body json.RawMessage) (json.RawMessage, error) {
	return body, nil
}

func (c *stubClient) Patch(_ context.Context, _, _ string, body json.RawMessage) (json.RawMessage, error) {
	return body, nil
}

func (c *stubClient) Delete(context.Context, string, string) error { return nil }

func (c *stubClient) Action(_ context.Context, resource, id, action string, body json.RawMessage) (json.RawMessage, error) {
	if c.actionErr != nil {
		return nil, c.actionErr
	}
	c.actions = append(c.actions, actionCall{resource: resource, id: id, action: action, body: body})
	return nil, nil
}

type stubFactory struct{ client *stubClient }

func (f stubFactory) ForSession(string) ports.ERPClient { return f.client }

// ---------------------------------------------------------------------------
// Notification stub
// ---------------------------------------------------------------------------

type stubNotifications struct {
	items   []domain.Notification
	polled  int
	pollErr error
}

func (s *stubNotifications) Poll(context.Context, string) ([]domain.Notification, error) {
	s.polled++
	if s.pollErr != nil {
		return nil, s.pollErr
	}
	return s.items, nil
}

func (s *stubNotifications) List(string) []domain.Notification { return s.items }

func (s *stubNotifications) UnreadCount(string) int {
	n := 0
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

func (s *stubNotifications) MarkRead(_ string, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (s *stubNotifications) MarkAllRead(string) {
	for i := range s.items {
		s.items[i].Read = true
	}
}

func (s *stubNotifications) Add(_ string, n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = "generated"
	}
	s.items = append([]domain.Notification{n}, s.items...)
	return n
}

func (s *stubNotifications) Remove(_ string, id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (s *stubNotifications) Forget(string) { s.items = nil }

// newContext builds an echo context that already carries a session, as the
// Session middleware would leave it.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.KeySessionID, "sid-1")
	return c, rec
}
