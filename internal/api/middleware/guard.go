package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/service"
)

// Guard applies a route guard decision on every request. Denied browsers get
// a 302 to the decision's target; JSON clients get {"redirect": "<path>"}
// with a 401 or 403 instead, since fetch follows a 302 on its own.
func Guard(check func(*domain.CurrentUser) service.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(KeyUser).(*domain.CurrentUser)
			d := check(user)
			if d.Allow {
				return next(c)
			}
			return Redirect(c, d.RedirectTo)
		}
	}
}

// RequireAuthenticated admits any signed-in user.
func RequireAuthenticated() echo.MiddlewareFunc {
	return Guard(service.RequireAuthenticated)
}

// RequireAdmin admits admins and superusers.
func RequireAdmin() echo.MiddlewareFunc {
	return Guard(service.RequireAdmin)
}

// Redirect sends a 302 to path. JSON clients get the target in the body,
// with 401 when it is the login page and 403 otherwise.
func Redirect(c echo.Context, path string) error {
	if wantsJSON(c.Request()) {
		status := http.StatusForbidden
		if path == service.LoginPath {
			status = http.StatusUnauthorized
		}
		c.Response().Header().Set(echo.HeaderLocation, path)
		return c.JSON(status, map[string]string{"redirect": path})
	}
	return c.Redirect(http.StatusFound, path)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
