package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory token store
// ---------------------------------------------------------------------------

type stubStore struct {
	mu      sync.Mutex
	data    map[string]map[string]string
	cleared int
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string]map[string]string)}
}

func (s *stubStore) Get(_ context.Context, sessionID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[sessionID][key], nil
}

func (s *stubStore) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[sessionID] == nil {
		s.data[sessionID] = make(map[string]string)
	}
	s.data[sessionID][key] = value
	return nil
}

func (s *stubStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	s.cleared++
	return nil
}

// ---------------------------------------------------------------------------
// Auth backend stub
// ---------------------------------------------------------------------------

type stubAuth struct {
	mu      sync.Mutex
	loginFn func(username, password string) (domain.TokenPair, error)
	meFn    func(access string) (*domain.CurrentUser, error)
	meCalls int
}

func (a *stubAuth) Login(_ context.Context, username, password string) (domain.TokenPair, error) {
	return a.loginFn(username, password)
}

func (a *stubAuth) Refresh(context.Context, string) (string, error) {
	return "", errors.New("refresh not expected")
}

func (a *stubAuth) Me(_ context.Context, access string) (*domain.CurrentUser, error) {
	a.mu.Lock()
	a.meCalls++
	a.mu.Unlock()
	return a.meFn(access)
}

// ---------------------------------------------------------------------------
// Poller and notification stubs
// ---------------------------------------------------------------------------

type stubPoller struct {
	mu        sync.Mutex
	watched   map[string]bool
	unwatches int
}

func newStubPoller() *stubPoller {
	return &stubPoller{watched: make(map[string]bool)}
}

func (p *stubPoller) Watch(sessionID string) {
	p.mu.Lock()
	p.watched[sessionID] = true
	p.mu.Unlock()
}

func (p *stubPoller) Unwatch(sessionID string) {
	p.mu.Lock()
	delete(p.watched, sessionID)
	p.unwatches++
	p.mu.Unlock()
}

func (p *stubPoller) isWatching(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watched[sessionID]
}

// ---------------------------------------------------------------------------
// ERP client stub
// ---------------------------------------------------------------------------

type stubClient struct {
	items      []domain.InventoryItem
	invoices   []domain.Invoice
	orders     []domain.SalesOrder
	itemsErr   error
	invoiceErr error
	ordersErr  error
	pages      map[string]*ports.Page
	listErr    map[string]error
}

func (c *stubClient) ListInventoryItems(context.Context) ([]domain.InventoryItem, error) {
	return c.items, c.itemsErr
}

func (c *stubClient) ListInvoices(context.Context) ([]domain.Invoice, error) {
	return c.invoices, c.invoiceErr
}

func (c *stubClient) ListSalesOrders(context.Context) ([]domain.SalesOrder, error) {
	return c.orders, c.ordersErr
}

func (c *stubClient) List(_ context.Context, resource string, _ url.Values) (*ports.Page, error) {
	if err := c.listErr[resource]; err != nil {
		return nil, err
	}
	if p, ok := c.pages[resource]; ok {
		return p, nil
	}
	return &ports.Page{Results: []json.RawMessage{}}, nil
}

func (c *stubClient) Get(context.Context, string, string) (json.RawMessage, error) {
	return nil, nil
}

func (c *stubClient) Create(context.Context, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}

func (c *stubClient) Update(context.Context, string, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}

func (c *stubClient) Patch(context.Context, string, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}

func (c *stubClient) Delete(context.Context, string, string) error {
	return nil
}

func (c *stubClient) Action(context.Context, string, string, string, json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}

type stubFactory struct {
	client *stubClient
}

func (f stubFactory) ForSession(string) ports.ERPClient {
	return f.client
}
