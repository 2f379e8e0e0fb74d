package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/enterprisepro/erp-portal/docs"
	"github.com/enterprisepro/erp-portal/internal/api/handler"
	"github.com/enterprisepro/erp-portal/internal/api/middleware"
	"github.com/enterprisepro/erp-portal/internal/core/ports"
	"github.com/enterprisepro/erp-portal/internal/infrastructure/http/handlers"
)

// Deps are the services the router exposes.
type Deps struct {
	Sessions      ports.SessionService
	Notifications ports.NotificationService
	Dashboards    ports.DashboardService
	Reports       ports.ReportService
	Clients       ports.ERPClientFactory
	Readiness     map[string]handlers.Pinger
	Session       middleware.SessionConfig
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Health probes, metrics and docs (no session) ---
	probes := handlers.NewProbes(d.Readiness)

	e.GET("/health", probes.Liveness)
	e.GET("/health/ready", probes.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions)
	dashHandler := handler.NewDashboardHandler(d.Dashboards, d.Notifications)
	notifHandler := handler.NewNotificationHandler(d.Notifications)
	reportHandler := handler.NewReportHandler(d.Reports)
	res := handler.NewResourceHandler(d.Clients, d.Notifications)
	confirm := middleware.RequireConfirmation()

	app := e.Group("", middleware.Session(d.Session, d.Sessions))

	// --- Auth routes ---
	app.GET("/login", authHandler.Status)
	app.POST("/login", authHandler.Login)
	app.POST("/logout", authHandler.Logout)

	// --- Authenticated routes ---
	authed := app.Group("", middleware.RequireAuthenticated())
	authed.GET("/", dashHandler.Home)
	authed.GET("/me", dashHandler.Me)

	authed.GET("/notifications", notifHandler.List)
	authed.POST("/notifications", notifHandler.Add)
	authed.POST("/notifications/refresh", notifHandler.Refresh)
	authed.POST("/notifications/read-all", notifHandler.MarkAllRead)
	authed.POST("/notifications/:id/read", notifHandler.MarkRead)
	authed.DELETE("/notifications/:id", notifHandler.Remove)

	authed.GET("/sales-orders", res.List("orders"))
	authed.POST("/sales-orders", res.Create("orders"))
	authed.GET("/sales-orders/:id", res.Get("orders"))
	for _, action := range []string{"confirm", "fulfill", "cancel"} {
		authed.POST("/sales-orders/:id/"+action, res.Action("orders", action), confirm)
	}

	crud(authed, "/inventory/products", "products", res, confirm)
	crud(authed, "/inventory/warehouses", "warehouses", res, confirm)
	crud(authed, "/inventory/items", "inventory-items", res, confirm)
	crud(authed, "/customers", "customers", res, confirm)

	authed.GET("/finance", res.Get("finance-dashboard"))
	authed.GET("/finance/invoices", res.List("invoices"))
	authed.POST("/finance/invoices", res.Create("invoices"))
	authed.GET("/finance/invoices/:id", res.Get("invoices"))
	authed.PUT("/finance/invoices/:id", res.Update("invoices"))
	authed.POST("/finance/invoices/:id/status", res.InvoiceStatus(), confirm)
	authed.GET("/finance/accounts", res.List("accounts"))
	authed.POST("/finance/accounts", res.Create("accounts"))
	authed.GET("/finance/accounts/:id", res.Get("accounts"))
	authed.PUT("/finance/accounts/:id", res.Update("accounts"))
	authed.GET("/finance/ledger", res.List("ledger"))

	authed.GET("/reports/sales", reportHandler.Sales)
	authed.GET("/reports/inventory", reportHandler.Inventory)
	authed.GET("/reports/financial", reportHandler.Financial)

	// --- Admin routes ---
	admin := app.Group("/admin", middleware.RequireAdmin())
	admin.GET("", dashHandler.Admin)
	crud(admin, "/users", "users", res, confirm)
	admin.POST("/users/:id/activate", res.Action("users", "activate"), confirm)
	admin.POST("/users/:id/deactivate", res.Action("users", "deactivate"), confirm)
	admin.GET("/audit-logs", res.List("audit-logs"))

	return e
}

// crud registers list, create, detail, edit and a confirmed delete.
func crud(g *echo.Group, path, resource string, res *handler.ResourceHandler, confirm echo.MiddlewareFunc) {
	g.GET(path, res.List(resource))
	g.POST(path, res.Create(resource))
	g.GET(path+"/:id", res.Get(resource))
	g.PUT(path+"/:id", res.Update(resource))
	g.DELETE(path+"/:id", res.Delete(resource), confirm)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
