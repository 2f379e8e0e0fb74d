package ports

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// AuthBackend talks to the unauthenticated auth endpoints of the ERP backend.
type AuthBackend interface {
	Login(ctx context.Context, username, password string) (domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Me(ctx context.Context, accessToken string) (*domain.CurrentUser, error)
}

// AlertSource lists the three collections the notification poller inspects.
type AlertSource interface {
	ListInventoryItems(ctx context.Context) ([]domain.InventoryItem, error)
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)
	ListSalesOrders(ctx context.Context) ([]domain.SalesOrder, error)
}

// Page is a normalized list response. Backends may answer either with
// {results, count, next, previous} or with a bare array.
type Page struct {
	Results  []json.RawMessage `json:"results"`
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
}

// ERPClient is an authenticated client bound to one session's tokens.
type ERPClient interface {
	AlertSource

	List(ctx context.Context, resource string, query url.Values) (*Page, error)
	Get(ctx context.Context, resource, id string) (json.RawMessage, error)
	Create(ctx context.Context, resource string, body json.RawMessage) (json.RawMessage, error)
	Update(ctx context.Context, resource, id string, body json.RawMessage) (json.RawMessage, error)
	Patch(ctx context.Context, resource, id string, body json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, resource, id string) error
	Action(ctx context.Context, resource, id, action string, body json.RawMessage) (json.RawMessage, error)
}

// ERPClientFactory hands out clients bound to a session's token jar.
type ERPClientFactory interface {
	ForSession(sessionID string) ERPClient
}
