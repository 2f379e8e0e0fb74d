package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/api/middleware"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

// ctxSession extracts the session injected by the Session middleware. An
// empty session ID means the middleware did not run, which is a wiring bug.
func ctxSession(c echo.Context) (sessionID string, user *domain.CurrentUser, err error) {
	sessionID, _ = c.Get(middleware.KeySessionID).(string)
	if sessionID == "" {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	user, _ = c.Get(middleware.KeyUser).(*domain.CurrentUser)
	return sessionID, user, nil
}
