package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/internal/config"
	"github.com/diewo77/go-inventory/internal/db"
	"github.com/diewo77/go-inventory/internal/db/dbtest"
	"github.com/diewo77/go-inventory/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "admin-password"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		App: config.AppConfig{
			Dev:            true,
			SessionSecret:  "test-secret",
			SessionTTL:     time.Hour,
			DefaultTaxRate: decimal.Zero,
		},
	}
}

type client struct {
	t      *testing.T
	app    http.Handler
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	c.app.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == auth.CookieName && ck.Value != "" {
			c.cookie = ck
		}
	}
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			// Lists such as categories are arrays.
			out = map[string]any{"raw": rec.Body.String()}
		}
	}
	return rec.Code, out
}

func (c *client) must(want int, method, path string, body any) map[string]any {
	c.t.Helper()
	code, out := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: status %d, want %d (%v)", method, path, code, want, out)
	}
	return out
}

func id(t *testing.T, obj map[string]any, key string) uint {
	t.Helper()
	m, ok := obj[key].(map[string]any)
	if !ok {
		t.Fatalf("missing %q in %v", key, obj)
	}
	return uint(m["id"].(float64))
}

func setupApp(t *testing.T) (http.Handler, *prometheus.Registry) {
	t.Helper()
	conn := dbtest.Open(t)
	if err := db.Seed(conn, db.SeedOptions{AdminEmail: adminEmail, AdminPassword: adminPassword}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	reg := prometheus.NewRegistry()
	return NewApp(conn, testConfig(), zap.NewNop(), metrics.New(reg, "inventory")), reg
}

func TestHealthAndAuthGuard(t *testing.T) {
	app, _ := setupApp(t)
	anon := &client{t: t, app: app}

	out := anon.must(http.StatusOK, http.MethodGet, "/health", nil)
	if out["status"] != "ok" {
		t.Fatalf("health: %v", out)
	}
	anon.must(http.StatusOK, http.MethodGet, "/healthz", nil)
	out = anon.must(http.StatusUnauthorized, http.MethodGet, "/api/profile", nil)
	if out["error"] != "unauthorized" {
		t.Fatalf("unauthorized body: %v", out)
	}
	anon.must(http.StatusUnauthorized, http.MethodPost, "/api/auth/login",
		map[string]string{"email": adminEmail, "password": "nope"})
}

func TestBillingFlow(t *testing.T) {
	app, _ := setupApp(t)

	admin := &client{t: t, app: app}
	admin.must(http.StatusOK, http.MethodPost, "/api/auth/login",
		map[string]string{"email": adminEmail, "password": adminPassword})

	buyer := &client{t: t, app: app}
	buyerID := id(t, buyer.must(http.StatusCreated, http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "buyer@shop.test", "password": "buyer-password"}), "user")
	profile := buyer.must(http.StatusOK, http.MethodGet, "/api/profile", nil)
	if perms, _ := profile["permissions"].([]any); len(perms) == 0 {
		t.Fatalf("profile permissions missing: %v", profile)
	}
	if profile["can_manage_users"] != false {
		t.Fatalf("buyer must not manage users: %v", profile)
	}

	item := admin.must(http.StatusCreated, http.MethodPost, "/api/inventory", map[string]any{
		"name": "4K Monitor", "category": "Monitors", "price": 150, "stock_quantity": 5, "sku": "MON-4K",
	})
	itemID := uint(item["id"].(float64))
	buyer.must(http.StatusForbidden, http.MethodPost, "/api/inventory", map[string]any{
		"name": "x", "category": "y", "price": 1, "stock_quantity": 1,
	})
	buyer.must(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/inventory/%d", itemID), nil)
	admin.must(http.StatusConflict, http.MethodPost, "/api/inventory", map[string]any{
		"name": "Dup", "category": "Monitors", "price": 1, "stock_quantity": 1, "sku": "MON-4K",
	})

	cust := admin.must(http.StatusCreated, http.MethodPost, "/api/billing/customers",
		map[string]any{"user_id": buyerID, "company_name": "Buyer Inc"})
	custID := id(t, cust, "customer")

	inv := admin.must(http.StatusCreated, http.MethodPost, "/api/billing/invoices", map[string]any{
		"customer_id": custID,
		"tax_rate":    0,
		"status":      "sent",
		"items":       []map[string]any{{"inventory_item_id": itemID, "quantity": 1}},
	})
	invID := id(t, inv, "invoice")
	invPath := fmt.Sprintf("/api/billing/invoices/%d", invID)

	out := admin.must(http.StatusBadRequest, http.MethodPost, "/api/billing/payments",
		map[string]any{"invoice_id": invID, "amount": 0})
	if out["error"] != "Invoice ID and valid amount are required" {
		t.Fatalf("validation message: %v", out)
	}
	admin.must(http.StatusBadRequest, http.MethodPost, "/api/billing/payments", map[string]any{"amount": 10})
	admin.must(http.StatusNotFound, http.MethodPost, "/api/billing/payments",
		map[string]any{"invoice_id": 9999, "amount": 10})
	buyer.must(http.StatusForbidden, http.MethodPost, "/api/billing/payments",
		map[string]any{"invoice_id": invID, "amount": 10})

	pay := admin.must(http.StatusCreated, http.MethodPost, "/api/billing/payments",
		map[string]any{"invoice_id": invID, "amount": 100})
	p := pay["payment"].(map[string]any)
	if p["payment_method"] != "check" || p["amount"].(float64) != 100 {
		t.Fatalf("payment defaults: %v", p)
	}
	got := buyer.must(http.StatusOK, http.MethodGet, invPath, nil)["invoice"].(map[string]any)
	if got["status"] != "sent" || got["balance_due"].(float64) != 50 {
		t.Fatalf("after partial payment: %v", got)
	}
	bal := buyer.must(http.StatusOK, http.MethodGet, invPath+"/balance", nil)["balance"].(map[string]any)
	if bal["amount_paid"].(float64) != 100 || bal["balance_due"].(float64) != 50 {
		t.Fatalf("balance after partial payment: %v", bal)
	}

	admin.must(http.StatusCreated, http.MethodPost, "/api/billing/payments",
		map[string]any{"invoice_id": invID, "amount": "50.00", "payment_method": "cash"})
	got = buyer.must(http.StatusOK, http.MethodGet, invPath, nil)["invoice"].(map[string]any)
	if got["status"] != "paid" || got["balance_due"].(float64) != 0 {
		t.Fatalf("after full payment: %v", got)
	}

	list := buyer.must(http.StatusOK, http.MethodGet, "/api/billing/invoices", nil)
	if list["total"].(float64) != 1 {
		t.Fatalf("buyer invoices: %v", list)
	}
	payments := buyer.must(http.StatusOK, http.MethodGet, fmt.Sprintf("/api/billing/payments?invoice_id=%d", invID), nil)
	if n := len(payments["payments"].([]any)); n != 2 {
		t.Fatalf("buyer payments: %d", n)
	}
	stats := buyer.must(http.StatusOK, http.MethodGet, "/api/billing/stats", nil)
	if stats["paidInvoices"].(float64) != 1 || stats["paidAmount"].(float64) != 150 {
		t.Fatalf("stats: %v", stats)
	}

	stranger := &client{t: t, app: app}
	stranger.must(http.StatusCreated, http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "stranger@shop.test", "password": "stranger-password"})
	stranger.must(http.StatusForbidden, http.MethodGet, invPath, nil)
	stranger.must(http.StatusForbidden, http.MethodGet, invPath+"/balance", nil)
	empty := stranger.must(http.StatusOK, http.MethodGet, "/api/billing/invoices", nil)
	if empty["total"].(float64) != 0 {
		t.Fatalf("stranger invoices: %v", empty)
	}

	buyer.must(http.StatusForbidden, http.MethodPatch, invPath+"/status", map[string]string{"status": "cancelled"})
}

func TestAdminRoleManagement(t *testing.T) {
	app, reg := setupApp(t)
	admin := &client{t: t, app: app}
	admin.must(http.StatusOK, http.MethodPost, "/api/auth/login",
		map[string]string{"email": adminEmail, "password": adminPassword})
	user := &client{t: t, app: app}
	userID := id(t, user.must(http.StatusCreated, http.MethodPost, "/api/auth/signup",
		map[string]string{"email": "staff@shop.test", "password": "staff-password"}), "user")

	user.must(http.StatusForbidden, http.MethodGet, "/api/admin/users", nil)
	users := admin.must(http.StatusOK, http.MethodGet, "/api/admin/users", nil)
	if n := len(users["users"].([]any)); n != 2 {
		t.Fatalf("users: %d", n)
	}

	rolePath := fmt.Sprintf("/api/admin/users/%d/role", userID)
	admin.must(http.StatusBadRequest, http.MethodPut, rolePath, map[string]string{"role": "owner"})
	admin.must(http.StatusNotFound, http.MethodPut, "/api/admin/users/9999/role", map[string]string{"role": "admin"})
	admin.must(http.StatusOK, http.MethodPut, rolePath, map[string]string{"role": "admin"})

	// The promoted user is admin immediately.
	user.must(http.StatusOK, http.MethodGet, "/api/admin/users", nil)

	profile := admin.must(http.StatusOK, http.MethodGet, "/api/profile", nil)
	if profile["can_manage_users"] != true {
		t.Fatalf("admin must manage users: %v", profile)
	}
	adminID := uint(profile["user"].(map[string]any)["id"].(float64))
	out := admin.must(http.StatusBadRequest, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", adminID),
		map[string]string{"role": "user"})
	if out["error"] != "Cannot change your own admin role" {
		t.Fatalf("self demotion: %v", out)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "inventory_http_requests_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("http metrics not recorded")
	}
	admin.must(http.StatusOK, http.MethodGet, "/metrics", nil)
}
