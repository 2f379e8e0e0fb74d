package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

type recordedCall struct {
	method string
	path   string
	body   string
}

func newRecordingClient(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		if respond != nil {
			respond(w, r)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	tr := newTestTransport(t, srv.URL)
	f := NewFactory(tr, NewAuthAPI(tr), stubJars{"sid": {access: "A"}}, zerolog.Nop())
	return f.ForSession("sid").(*Client), &calls
}

func TestClient_OrderActions(t *testing.T) {
	client, calls := newRecordingClient(t, nil)
	ctx := context.Background()

	_, err := client.Action(ctx, "orders", "7", "confirm", nil)
	require.NoError(t, err)
	_, err = client.Action(ctx, "orders", "7", "fulfill", nil)
	require.NoError(t, err)
	_, err = client.Action(ctx, "orders", "7", "cancel", json.RawMessage(`{"status":"draft"}`))
	require.NoError(t, err)

	require.Len(t, *calls, 3)
	assert.Equal(t, recordedCall{http.MethodPost, "/api/v1/sales/orders/7/confirm/", ""}, (*calls)[0])
	assert.Equal(t, recordedCall{http.MethodPost, "/api/v1/sales/orders/7/fulfill/", ""}, (*calls)[1])
	assert.Equal(t, http.MethodPatch, (*calls)[2].method)
	assert.Equal(t, "/api/v1/sales/orders/7/", (*calls)[2].path)
	assert.JSONEq(t, `{"status":"cancelled"}`, (*calls)[2].body)
}

func TestClient_InvoiceStatus(t *testing.T) {
	client, calls := newRecordingClient(t, nil)

	_, err := client.Action(context.Background(), "invoices", "5", "status", json.RawMessage(`{"status":"paid"}`))
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPatch, (*calls)[0].method)
	assert.Equal(t, "/api/v1/finance/invoices/5/", (*calls)[0].path)
	assert.JSONEq(t, `{"status":"paid"}`, (*calls)[0].body)
}

func TestClient_UserActivation(t *testing.T) {
	client, calls := newRecordingClient(t, nil)

	_, err := client.Action(context.Background(), "users", "12", "deactivate", nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/auth/users/12/deactivate/", (*calls)[0].path)

	_, err = client.Action(context.Background(), "users", "12", "promote", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownResource)
}

func TestClient_ReadOnlyResources(t *testing.T) {
	client, calls := newRecordingClient(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, client.Delete(ctx, "ledger", "1"), domain.ErrForbidden)
	_, err := client.Create(ctx, "audit-logs", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, *calls, "read-only writes never reach the backend")

	_, err = client.List(ctx, "spaceships", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownResource)
}

func TestClient_CRUDPaths(t *testing.T) {
	client, calls := newRecordingClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"id":5}`)
	})
	ctx := context.Background()

	_, err := client.Get(ctx, "finance-dashboard", "")
	require.NoError(t, err)
	_, err = client.Update(ctx, "customers", "5", json.RawMessage(`{"name":"Acme"}`))
	require.NoError(t, err)
	_, err = client.Patch(ctx, "invoices", "5", json.RawMessage(`{"status":"sent"}`))
	require.NoError(t, err)
	require.NoError(t, client.Delete(ctx, "products", "5"))

	want := []recordedCall{
		{http.MethodGet, "/api/v1/finance/dashboard/kpis/", ""},
		{http.MethodPut, "/api/v1/sales/customers/5/", `{"name":"Acme"}`},
		{http.MethodPatch, "/api/v1/finance/invoices/5/", `{"status":"sent"}`},
		{http.MethodDelete, "/api/v1/inventory/products/5/", ""},
	}
	assert.Equal(t, want, *calls)
}

func TestClient_AlertSources(t *testing.T) {
	client, _ := newRecordingClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/inventory/inventory-items/":
			_, _ = io.WriteString(w, `{"count":1,"results":[{"id":1,"quantity":2,"minimum_stock_level":10}]}`)
		case "/api/v1/finance/invoices/":
			_, _ = io.WriteString(w, `[{"id":1,"status":"sent","due_date":"2024-01-31"}]`)
		case "/api/v1/sales/orders/":
			_, _ = io.WriteString(w, `[{"id":1,"status":"draft","total_amount":"150.50"}]`)
		}
	})
	ctx := context.Background()

	items, err := client.ListInventoryItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].BelowMinimum())

	invoices, err := client.ListInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-31", invoices[0].DueDate)

	orders, err := client.ListSalesOrders(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 150.50, float64(orders[0].TotalAmount), 0.001)
}

func TestLookupResource_Actions(t *testing.T) {
	r, err := LookupResource("orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"cancel", "confirm", "fulfill"}, r.Actions())

	r, err = LookupResource("invoices")
	require.NoError(t, err)
	assert.Equal(t, []string{"status"}, r.Actions())
}
