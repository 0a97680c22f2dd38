package main

import (
	"net/http"
	"time"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/gate"
	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/config"
	"github.com/diewo77/go-inventory/internal/db"
	"github.com/diewo77/go-inventory/internal/handlers"
	"github.com/diewo77/go-inventory/internal/ledger"
	"github.com/diewo77/go-inventory/internal/logger"
	"github.com/diewo77/go-inventory/internal/metrics"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// profileCacheTTL bounds how long a role change can go unnoticed when the
// cache entry was not invalidated explicitly.
const profileCacheTTL = 5 * time.Minute

// App is the HTTP entry point with every route wired.
type App struct {
	router   chi.Router
	db       *gorm.DB
	gate     *policy.AuthGate
	sessions *auth.Sessions
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewApp builds services, handlers and routes on top of conn.
func NewApp(conn *gorm.DB, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *App {
	users := services.NewUserService(conn)
	a := &App{
		router:   chi.NewRouter(),
		db:       conn,
		gate:     policy.NewAuthGate(conn, profileCacheTTL),
		sessions: auth.NewSessions(cfg.App.SessionSecret, cfg.App.SessionTTL, !cfg.App.Dev, users.Exists),
		metrics:  m,
		log:      log,
	}

	opts := []ledger.Option{ledger.WithMetrics(m)}
	if cfg.Kafka.Enabled() {
		opts = append(opts, ledger.WithEvents())
	}
	led := ledger.New(conn, logger.Component(log, "ledger"), opts...)

	hlog := logger.Component(log, "http")
	a.routes(cfg, routeHandlers{
		auth:      handlers.NewAuthHandler(users, a.sessions, a.gate, hlog),
		admin:     handlers.NewAdminUserHandler(users, a.gate, hlog),
		inventory: handlers.NewInventoryHandler(services.NewInventoryService(conn), hlog),
		customers: handlers.NewCustomerHandler(services.NewCustomerService(conn), a.gate, hlog),
		invoices:  handlers.NewInvoiceHandler(services.NewInvoiceService(conn, cfg.App.DefaultTaxRate), led, a.gate, hlog),
		payments:  handlers.NewPaymentHandler(led, services.NewPaymentService(conn), a.gate, hlog),
	})
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

type routeHandlers struct {
	auth      *handlers.AuthHandler
	admin     *handlers.AdminUserHandler
	inventory *handlers.InventoryHandler
	customers *handlers.CustomerHandler
	invoices  *handlers.InvoiceHandler
	payments  *handlers.PaymentHandler
}

func (a *App) routes(cfg *config.Config, h routeHandlers) {
	r := a.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.AccessLog(a.log))
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(a.sessions.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", a.healthz)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.auth.Signup)
		r.Post("/auth/login", h.auth.Login)
		r.Post("/auth/logout", h.auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(a.sessions.RequireAuth)
			r.Get("/profile", h.auth.Profile)

			r.Route("/inventory", func(r chi.Router) {
				r.With(a.can(policy.ResourceInventory, gate.ActionList)).Get("/", h.inventory.List)
				r.With(a.can(policy.ResourceInventory, gate.ActionList)).Get("/categories", h.inventory.Categories)
				r.With(a.can(policy.ResourceInventory, gate.ActionList)).Get("/stats", h.inventory.Stats)
				r.With(a.can(policy.ResourceInventory, gate.ActionView)).Get("/{id}", h.inventory.Get)
				r.With(a.can(policy.ResourceInventory, gate.ActionCreate)).Post("/", h.inventory.Create)
				r.With(a.can(policy.ResourceInventory, gate.ActionUpdate)).Put("/{id}", h.inventory.Update)
				r.With(a.can(policy.ResourceInventory, gate.ActionDelete)).Delete("/{id}", h.inventory.Delete)
			})

			r.Route("/billing", func(r chi.Router) {
				r.With(a.can(policy.ResourceCustomer, gate.ActionList)).Get("/customers", h.customers.List)
				r.With(a.can(policy.ResourceCustomer, gate.ActionCreate)).Post("/customers", h.customers.Create)

				r.With(a.can(policy.ResourceInvoice, gate.ActionList)).Get("/invoices", h.invoices.List)
				r.With(a.can(policy.ResourceInvoice, gate.ActionCreate)).Post("/invoices", h.invoices.Create)
				r.With(a.can(policy.ResourceInvoice, gate.ActionView)).Get("/invoices/{id}", h.invoices.Get)
				r.With(a.can(policy.ResourceInvoice, gate.ActionView)).Get("/invoices/{id}/balance", h.invoices.Balance)
				r.With(a.can(policy.ResourceInvoice, gate.ActionManage)).Patch("/invoices/{id}/status", h.invoices.UpdateStatus)

				r.With(a.can(policy.ResourcePayment, gate.ActionList)).Get("/payments", h.payments.List)
				r.With(a.can(policy.ResourcePayment, gate.ActionCreate)).Post("/payments", h.payments.Create)

				r.With(a.can(policy.ResourceBillingStats, gate.ActionView)).Get("/stats", h.invoices.Stats)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(a.gate.RequireAdmin())
				r.Get("/users", h.admin.List)
				r.Put("/users/{id}/role", h.admin.UpdateRole)
			})
		})
	})
}

func (a *App) can(resource string, action gate.Action) func(http.Handler) http.Handler {
	return a.gate.RequirePermission(resource, action)
}

func (a *App) healthz(w http.ResponseWriter, _ *http.Request) {
	if err := db.Ping(a.db); err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
