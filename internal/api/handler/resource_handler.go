package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/enterprisepro/erp-portal/internal/core/domain"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
)

const maxPayloadBytes = 1 << 20

// transitionNotices are the success banners raised after a state transition.
var transitionNotices = map[string]string{
	"orders/confirm":   "Order confirmed",
	"orders/fulfill":   "Order fulfilled",
	"orders/cancel":    "Order cancelled",
	"invoices/status":  "Invoice status updated",
	"users/activate":   "User activated",
	"users/deactivate": "User deactivated",
}

// ResourceHandler proxies page data routes to ERP resources with the
// session's credentials.
type ResourceHandler struct {
	clients       ports.ERPClientFactory
	notifications ports.NotificationService
}

func NewResourceHandler(clients ports.ERPClientFactory, notifications ports.NotificationService) *ResourceHandler {
	return &ResourceHandler{clients: clients, notifications: notifications}
}

func (h *ResourceHandler) client(c echo.Context) (ports.ERPClient, string, error) {
	sid, _, err := ctxSession(c)
	if err != nil {
		return nil, "", err
	}
	return h.clients.ForSession(sid), sid, nil
}

// List forwards the query string verbatim and answers with the backend's page.
func (h *ResourceHandler) List(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, _, err := h.client(c)
		if err != nil {
			return err
		}
		page, err := client.List(c.Request().Context(), resource, c.QueryParams())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, page)
	}
}

// Get returns one record, or the resource root when the route has no :id.
func (h *ResourceHandler) Get(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, _, err := h.client(c)
		if err != nil {
			return err
		}
		rec, err := client.Get(c.Request().Context(), resource, c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, rec)
	}
}

func (h *ResourceHandler) Create(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, _, err := h.client(c)
		if err != nil {
			return err
		}
		body, err := readPayload(c, true)
		if err != nil {
			return err
		}
		rec, err := client.Create(c.Request().Context(), resource, body)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusCreated, rec)
	}
}

func (h *ResourceHandler) Update(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, _, err := h.client(c)
		if err != nil {
			return err
		}
		body, err := readPayload(c, true)
		if err != nil {
			return err
		}
		rec, err := client.Update(c.Request().Context(), resource, c.Param("id"), body)
		if err != nil {
			return err
		}
		return c.JSONBlob(http.StatusOK, rec)
	}
}

func (h *ResourceHandler) Delete(resource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, _, err := h.client(c)
		if err != nil {
			return err
		}
		if err := client.Delete(c.Request().Context(), resource, c.Param("id")); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// Action runs a state transition and raises a success notification.
func (h *ResourceHandler) Action(resource, action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := readPayload(c, false)
		if err != nil {
			return err
		}
		return h.transition(c, resource, action, body)
	}
}

// InvoiceStatus moves an invoice to the requested status.
//
// @Summary      Change invoice status
// @Tags         finance
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Invoice ID"
// @Param        body  body      invoiceStatusRequest  true  "New status"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  errorResponse
// @Failure      428   {object}  errorResponse
// @Router       /finance/invoices/{id}/status [post]
func (h *ResourceHandler) InvoiceStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req invoiceStatusRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		body, err := json.Marshal(req)
		if err != nil {
			return err
		}
		return h.transition(c, "invoices", "status", body)
	}
}

func (h *ResourceHandler) transition(c echo.Context, resource, action string, body json.RawMessage) error {
	client, sid, err := h.client(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	rec, err := client.Action(c.Request().Context(), resource, id, action, body)
	if err != nil {
		return err
	}

	if title, ok := transitionNotices[resource+"/"+action]; ok {
		h.notifications.Add(sid, domain.Notification{
			Category: domain.CategorySuccess,
			Title:    title,
			Message:  fmt.Sprintf("%s #%s successfully", title, id),
		})
	}

	if len(rec) == 0 {
		return c.JSON(http.StatusOK, messageResponse{Message: action + " ok"})
	}
	return c.JSONBlob(http.StatusOK, rec)
}

// readPayload reads the request body as raw JSON. An empty body is accepted
// only when required is false.
func readPayload(c echo.Context, required bool) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPayloadBytes))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(data) == 0 {
		if required {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "request body is required")
		}
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return json.RawMessage(data), nil
}
