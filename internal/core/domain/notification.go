package domain

import (
	"errors"
	"time"
)

// NotificationCategory drives how an alert is presented.
type NotificationCategory string

const (
	CategoryInfo    NotificationCategory = "info"
	CategoryWarning NotificationCategory = "warning"
	CategoryError   NotificationCategory = "error"
	CategorySuccess NotificationCategory = "success"
)

// Fixed identifiers of the alerts derived by the poller.
const (
	AlertLowStock        = "low-stock"
	AlertOverdueInvoices = "overdue-invoices"
	AlertPendingOrders   = "pending-orders"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationAction points the user at the page that explains an alert.
type NotificationAction struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Notification is synthesized by the portal and never sent to the backend.
type Notification struct {
	ID        string               `json:"id"`
	Category  NotificationCategory `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	CreatedAt time.Time            `json:"timestamp"`
	Read      bool                 `json:"read"`
	Action    *NotificationAction  `json:"action,omitempty"`
}
