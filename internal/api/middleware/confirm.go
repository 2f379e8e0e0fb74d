package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// HeaderConfirmAction must be "true" on destructive requests.
const HeaderConfirmAction = "X-Confirm-Action"

// RequireConfirmation rejects deletes and state transitions that were not
// explicitly confirmed with the X-Confirm-Action header or ?confirm=true.
func RequireConfirmation() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if confirmed(c.Request().Header.Get(HeaderConfirmAction)) || confirmed(c.QueryParam("confirm")) {
				return next(c)
			}
			return domain.ErrConfirmationRequired
		}
	}
}

func confirmed(v string) bool {
	ok, err := strconv.ParseBool(v)
	return err == nil && ok
}
