package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

type NotificationHandler struct {
	notifications ports.NotificationService
}

func NewNotificationHandler(notifications ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) respond(c echo.Context, sid string) error {
	return c.JSON(http.StatusOK, notificationsResponse{
		Notifications: h.notifications.List(sid),
		UnreadCount:   h.notifications.UnreadCount(sid),
	})
}

// List returns the session's notifications.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	return h.respond(c, sid)
}

// Refresh polls the backend now instead of waiting for the next tick.
//
// @Summary      Refresh notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Failure      401  {object}  errorResponse
// @Router       /notifications/refresh [post]
func (h *NotificationHandler) Refresh(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if _, err := h.notifications.Poll(c.Request().Context(), sid); err != nil {
		return err
	}
	return h.respond(c, sid)
}

// Add raises a notification for the session.
//
// @Summary      Add notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body      addNotificationRequest  true  "Notification"
// @Success      201   {object}  domain.Notification
// @Failure      400   {object}  errorResponse
// @Router       /notifications [post]
func (h *NotificationHandler) Add(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req addNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	n := h.notifications.Add(sid, domain.Notification{
		Category: domain.NotificationCategory(req.Type),
		Title:    req.Title,
		Message:  req.Message,
		Action:   req.Action,
	})
	return c.JSON(http.StatusCreated, n)
}

// MarkRead marks one notification as read.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  notificationsResponse
// @Failure      404  {object}  errorResponse
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(sid, c.Param("id")); err != nil {
		return err
	}
	return h.respond(c, sid)
}

// MarkAllRead marks every notification as read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationsResponse
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	h.notifications.MarkAllRead(sid)
	return h.respond(c, sid)
}

// Remove deletes one notification.
//
// @Summary      Remove notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  notificationsResponse
// @Failure      404  {object}  errorResponse
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Remove(c echo.Context) error {
	sid, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.notifications.Remove(sid, c.Param("id")); err != nil {
		return err
	}
	return h.respond(c, sid)
}
