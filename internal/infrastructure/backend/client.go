package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// Client is the authenticated ERP client of one session.
type Client struct {
	gw *Gateway
}

func NewClient(gw *Gateway) *Client {
	return &Client{gw: gw}
}

func (c *Client) List(ctx context.Context, resource string, query url.Values) (*ports.Page, error) {
	r, err := LookupResource(resource)
	if err != nil {
		return nil, err
	}
	resp, err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: r.Path, Query: query})
	if err != nil {
		return nil, err
	}
	return decodePage(resp.Body)
}

// Get fetches one record. An empty id reads the resource root, which is how
// singleton resources such as finance-dashboard are fetched.
func (c *Client) Get(ctx context.Context, resource, id string) (json.RawMessage, error) {
	r, err := LookupResource(resource)
	if err != nil {
		return nil, err
	}
	path := r.Path
	if id != "" {
		path = r.recordPath(id)
	}
	resp, err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Create(ctx context.Context, resource string, body json.RawMessage) (json.RawMessage, error) {
	r, err := lookupWritable(resource)
	if err != nil {
		return nil, err
	}
	resp, err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: r.Path, Body: body})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Update(ctx context.Context, resource, id string, body json.RawMessage) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPut, resource, id, body)
}

func (c *Client) Patch(ctx context.Context, resource, id string, body json.RawMessage) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPatch, resource, id, body)
}

func (c *Client) write(ctx context.Context, method, resource, id string, body json.RawMessage) (json.RawMessage, error) {
	r, err := lookupWritable(resource)
	if err != nil {
		return nil, err
	}
	resp, err := c.gw.Do(ctx, Request{Method: method, Path: r.recordPath(id), Body: body})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) Delete(ctx context.Context, resource, id string) error {
	r, err := lookupWritable(resource)
	if err != nil {
		return err
	}
	_, err = c.gw.Do(ctx, Request{Method: http.MethodDelete, Path: r.recordPath(id)})
	return err
}

// Action invokes a named transition such as confirm or deactivate.
func (c *Client) Action(ctx context.Context, resource, id, action string, body json.RawMessage) (json.RawMessage, error) {
	r, err := LookupResource(resource)
	if err != nil {
		return nil, err
	}
	spec, ok := r.actions[action]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no action %q", domain.ErrUnknownResource, resource, action)
	}

	path := r.recordPath(id) + action + "/"
	if spec.onRecord {
		path = r.recordPath(id)
	}
	if spec.body != nil {
		body = spec.body
	}
	req := Request{Method: spec.method, Path: path}
	if body != nil {
		req.Body = body
	}
	resp, err := c.gw.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return listAll[domain.InventoryItem](ctx, c, "inventory-items")
}

func (c *Client) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return listAll[domain.Invoice](ctx, c, "invoices")
}

func (c *Client) ListSalesOrders(ctx context.Context) ([]domain.SalesOrder, error) {
	return listAll[domain.SalesOrder](ctx, c, "orders")
}

func listAll[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	page, err := c.List(ctx, resource, nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return decodeResults[T](page)
}

// Factory builds per-session clients over a shared transport.
type Factory struct {
	transport *Transport
	auth      *AuthAPI
	jars      ports.JarProvider
	onExpire  func(ctx context.Context, sessionID string)
	log       zerolog.Logger
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithExpiryHook registers fn to run when a session's refresh token is rejected.
func WithExpiryHook(fn func(ctx context.Context, sessionID string)) FactoryOption {
	return func(f *Factory) { f.onExpire = fn }
}

func NewFactory(t *Transport, auth *AuthAPI, jars ports.JarProvider, log zerolog.Logger, opts ...FactoryOption) *Factory {
	f := &Factory{
		transport: t,
		auth:      auth,
		jars:      jars,
		log:       log.With().Str("component", "gateway").Logger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Factory) ForSession(sessionID string) ports.ERPClient {
	var hook func(ctx context.Context)
	if f.onExpire != nil {
		hook = func(ctx context.Context) { f.onExpire(ctx, sessionID) }
	}
	log := f.log.With().Str("session", shortID(sessionID)).Logger()
	return NewClient(NewGateway(f.transport, f.auth, f.jars.Jar(sessionID), hook, log))
}

// shortID keeps log lines correlatable without writing the bearer session ID.
func shortID(sessionID string) string {
	if len(sessionID) <= 8 {
		return sessionID
	}
	return sessionID[:8]
}
