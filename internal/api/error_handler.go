package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/enterprisepro/erp-portal/internal/api/middleware"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/backend"
)

const genericErrorMessage = "Something went wrong"

// errorResponse is the canonical error envelope for all API errors. Action is
// set when the client should offer a recovery step.
type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain and backend errors to their HTTP status codes.
//   - Turns an expired session into a redirect to the login page.
//   - Logs unexpected errors internally and answers with a generic envelope
//     telling the client to reload.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrSessionExpired) {
			_ = middleware.Redirect(c, "/login")
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusPreconditionRequired, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not authenticated"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, errorResponse{Error: "notification not found"}
	case errors.Is(err, domain.ErrUnknownResource):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidPeriod):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return resolveBackendError(apiErr, log, c)
	}

	if errors.Is(err, backend.ErrUnavailable) {
		log.Warn().Err(err).Str("path", c.Path()).Msg("erp backend unavailable")
		return http.StatusBadGateway, errorResponse{Error: "ERP backend unavailable"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorResponse{Error: "ERP backend timed out"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: genericErrorMessage, Action: "reload"}
}

func resolveBackendError(apiErr *backend.APIError, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	msg := apiErr.Message
	switch code := apiErr.StatusCode; {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "validation failed"
		}
		return http.StatusBadRequest, errorResponse{Error: msg}
	case code == http.StatusUnauthorized:
		return http.StatusUnauthorized, errorResponse{Error: "not authenticated"}
	case code == http.StatusForbidden:
		if msg == "" {
			msg = "access forbidden"
		}
		return http.StatusForbidden, errorResponse{Error: msg}
	case code == http.StatusNotFound:
		return http.StatusNotFound, errorResponse{Error: "not found"}
	case code >= http.StatusInternalServerError:
		log.Warn().
			Int("backend_status", code).
			Str("backend_path", apiErr.Path).
			Str("path", c.Path()).
			Msg("erp backend error")
		return http.StatusBadGateway, errorResponse{Error: "ERP backend error"}
	default:
		if msg == "" {
			msg = http.StatusText(code)
		}
		return code, errorResponse{Error: msg}
	}
}
