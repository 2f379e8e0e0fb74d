package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

type DashboardHandler struct {
	dashboards    ports.DashboardService
	notifications ports.NotificationService
}

func NewDashboardHandler(dashboards ports.DashboardService, notifications ports.NotificationService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, notifications: notifications}
}

// Home returns the signed-in user, their alerts and the headline figures.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      401  {object}  map[string]string
// @Router       / [get]
func (h *DashboardHandler) Home(c echo.Context) error {
	sid, user, err := ctxSession(c)
	if err != nil {
		return err
	}

	summary, err := h.dashboards.Summary(c.Request().Context(), sid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboardResponse{
		User:          user,
		UnreadCount:   h.notifications.UnreadCount(sid),
		Notifications: h.notifications.List(sid),
		Summary:       summary,
	})
}

// Me returns the profile of the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.CurrentUser
// @Router       /me [get]
func (h *DashboardHandler) Me(c echo.Context) error {
	_, user, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Admin returns user and catalogue counts.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.AdminStats
// @Router       /admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboards.AdminStats(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
