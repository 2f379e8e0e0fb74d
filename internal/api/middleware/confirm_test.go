package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

func TestRequireConfirmation(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		header  string
		allowed bool
	}{
		{"no confirmation", "/sales-orders/7/cancel", "", false},
		{"header true", "/sales-orders/7/cancel", "true", true},
		{"header false", "/sales-orders/7/cancel", "false", false},
		{"query true", "/sales-orders/7/cancel?confirm=true", "", true},
		{"query garbage", "/sales-orders/7/cancel?confirm=yes-please", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, tc.target, nil)
			if tc.header != "" {
				req.Header.Set(HeaderConfirmAction, tc.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			handler := RequireConfirmation()(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})

			err := handler(c)
			if called != tc.allowed {
				t.Fatalf("expected next called=%v, got %v", tc.allowed, called)
			}
			if !tc.allowed && !errors.Is(err, domain.ErrConfirmationRequired) {
				t.Fatalf("expected ErrConfirmationRequired, got %v", err)
			}
		})
	}
}
