package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

type AuthHandler struct {
	sessions ports.SessionService
}

func NewAuthHandler(sessions ports.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Status reports whether the browser session is signed in.
//
// @Summary      Session status
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.SessionStatus
// @Router       /login [get]
func (h *AuthHandler) Status(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.sessions.Status(c.Request().Context(), sid))
}

// Login signs the browser session in with ERP credentials.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "ERP credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	res := h.sessions.Login(c.Request().Context(), sid, req.Username, req.Password)
	if !res.Success {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: res.Error})
	}
	return c.JSON(http.StatusOK, loginResponse{Success: true, User: res.User, Redirect: "/"})
}

// Logout ends the browser session. The backend is not contacted.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  loginResponse
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	h.sessions.Logout(c.Request().Context(), sid)
	return c.JSON(http.StatusOK, loginResponse{Success: true, Redirect: "/login"})
}
