package handler

import "github.com/enterprisepro/erp-portal/internal/core/domain"

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success  bool                `json:"success"`
	User     *domain.CurrentUser `json:"user,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type dashboardResponse struct {
	User          *domain.CurrentUser     `json:"user"`
	UnreadCount   int                     `json:"unread_count"`
	Notifications []domain.Notification   `json:"notifications"`
	Summary       domain.DashboardSummary `json:"summary"`
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type addNotificationRequest struct {
	Type    string                     `json:"type"    validate:"omitempty,oneof=info warning error success"`
	Title   string                     `json:"title"   validate:"required"`
	Message string                     `json:"message" validate:"required"`
	Action  *domain.NotificationAction `json:"action"`
}

type invoiceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid cancelled"`
}
