package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/enterprisepro/erp-portal/internal/api/middleware"
	"github.com/enterprisepro/erp-portal/internal/core/domain"
)

type stubDashboards struct {
	summary domain.DashboardSummary
	stats   domain.AdminStats
	err     error
}

func (s stubDashboards) Summary(context.Context, string) (domain.DashboardSummary, error) {
	return s.summary, s.err
}

func (s stubDashboards) AdminStats(context.Context, string) (domain.AdminStats, error) {
	return s.stats, s.err
}

func TestDashboardHome(t *testing.T) {
	notifications := &stubNotifications{items: []domain.Notification{{ID: domain.AlertLowStock}}}
	h := NewDashboardHandler(stubDashboards{summary: domain.DashboardSummary{TotalOrders: 4, PendingOrders: 1}}, notifications)

	c, rec := newContext(http.MethodGet, "/", "")
	c.Set(middleware.KeyUser, &domain.CurrentUser{Username: "alice"})
	if err := h.Home(c); err != nil {
		t.Fatalf("home: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User == nil || resp.User.Username != "alice" || resp.UnreadCount != 1 || resp.Summary.TotalOrders != 4 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDashboardHome_SessionExpired(t *testing.T) {
	h := NewDashboardHandler(stubDashboards{err: domain.ErrSessionExpired}, &stubNotifications{})

	c, _ := newContext(http.MethodGet, "/", "")
	if err := h.Home(c); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestDashboardAdmin(t *testing.T) {
	h := NewDashboardHandler(stubDashboards{stats: domain.AdminStats{TotalUsers: 3, AdminUsers: 1}}, &stubNotifications{})

	c, rec := newContext(http.MethodGet, "/admin", "")
	if err := h.Admin(c); err != nil {
		t.Fatalf("admin: %v", err)
	}
	var stats domain.AdminStats
	_ = json.Unmarshal(rec.Body.Bytes(), &stats)
	if stats.TotalUsers != 3 || stats.AdminUsers != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
