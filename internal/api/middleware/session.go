package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

// Context keys set by Session.
const (
	KeySessionID = "session_id"
	KeyUser      = "user"
)

// SessionConfig configures the browser session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// Session identifies the browser by cookie, issuing a fresh ID when the
// cookie is missing or malformed, restores the session once and injects the
// session ID and current user into the context.
func Session(cfg SessionConfig, sessions ports.SessionService) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "erp_session"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(cfg.CookieName); err == nil {
				if _, perr := uuid.Parse(ck.Value); perr == nil {
					sid = ck.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cfg.CookieName,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(cfg.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sess := sessions.Restore(c.Request().Context(), sid)

			c.Set(KeySessionID, sid)
			c.Set(KeyUser, sess.User)

			return next(c)
		}
	}
}
