package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// actionSpec describes how a state transition is invoked on a record.
type actionSpec struct {
	method string
	// onRecord sends the request to the record itself instead of /<id>/<action>/.
	onRecord bool
	// body replaces the caller's payload when set.
	body json.RawMessage
}

// Resource is one collection exposed by the ERP REST API.
type Resource struct {
	Name     string
	Path     string
	ReadOnly bool
	actions  map[string]actionSpec
}

func (r Resource) recordPath(id string) string {
	return r.Path + id + "/"
}

// Actions lists the transitions the resource accepts.
func (r Resource) Actions() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var resources = map[string]Resource{}

func register(r Resource) {
	resources[r.Name] = r
}

func init() {
	register(Resource{Name: "products", Path: "/api/v1/inventory/products/"})
	register(Resource{Name: "warehouses", Path: "/api/v1/inventory/warehouses/"})
	register(Resource{Name: "inventory-items", Path: "/api/v1/inventory/inventory-items/"})

	register(Resource{Name: "customers", Path: "/api/v1/sales/customers/"})
	register(Resource{
		Name: "orders",
		Path: "/api/v1/sales/orders/",
		actions: map[string]actionSpec{
			"confirm": {method: http.MethodPost},
			"fulfill": {method: http.MethodPost},
			"cancel": {
				method:   http.MethodPatch,
				onRecord: true,
				body:     json.RawMessage(`{"status":"` + domain.OrderCancelled + `"}`),
			},
		},
	})

	register(Resource{
		Name: "invoices",
		Path: "/api/v1/finance/invoices/",
		actions: map[string]actionSpec{
			// The caller supplies {"status": ...}.
			"status": {method: http.MethodPatch, onRecord: true},
		},
	})
	register(Resource{Name: "accounts", Path: "/api/v1/finance/accounts/"})
	register(Resource{Name: "ledger", Path: "/api/v1/finance/ledger/", ReadOnly: true})
	register(Resource{Name: "finance-dashboard", Path: "/api/v1/finance/dashboard/kpis/", ReadOnly: true})

	register(Resource{
		Name: "users",
		Path: "/api/v1/auth/users/",
		actions: map[string]actionSpec{
			"activate":   {method: http.MethodPost},
			"deactivate": {method: http.MethodPost},
		},
	})
	register(Resource{Name: "audit-logs", Path: "/api/v1/audit/logs/", ReadOnly: true})
}

// LookupResource returns the registered resource with the given name.
func LookupResource(name string) (Resource, error) {
	r, ok := resources[name]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", domain.ErrUnknownResource, name)
	}
	return r, nil
}

func lookupWritable(name string) (Resource, error) {
	r, err := LookupResource(name)
	if err != nil {
		return Resource{}, err
	}
	if r.ReadOnly {
		return Resource{}, fmt.Errorf("%w: %s is read-only", domain.ErrForbidden, name)
	}
	return r, nil
}
