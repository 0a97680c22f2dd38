package policy_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/gate"
	"github.com/diewo77/go-inventory/internal/db/dbtest"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/internal/policy"
	"gorm.io/gorm"
)

func mkUser(t *testing.T, conn *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Email: email, Password: "x", Role: role}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestRoleProfiles(t *testing.T) {
	cases := []struct {
		role     models.Role
		resource string
		action   gate.Action
		want     bool
	}{
		{models.RoleAdmin, policy.ResourceInventory, gate.ActionDelete, true},
		{models.RoleAdmin, policy.ResourceUser, gate.ActionUpdate, true},
		{models.RoleUser, policy.ResourceInventory, gate.ActionList, true},
		{models.RoleUser, policy.ResourceInventory, gate.ActionCreate, false},
		{models.RoleUser, policy.ResourceInvoice, gate.ActionView, true},
		{models.RoleUser, policy.ResourceInvoice, gate.ActionCreate, false},
		{models.RoleUser, policy.ResourcePayment, gate.ActionCreate, false},
		{models.RoleUser, policy.ResourceBillingStats, gate.ActionView, true},
		{models.RoleUser, policy.ResourceUser, gate.ActionList, false},
	}
	for _, c := range cases {
		got := policy.ProfileForRole(c.role).Can(gate.NewPermission(c.resource, c.action))
		if got != c.want {
			t.Errorf("%s %s:%s = %v, want %v", c.role, c.resource, c.action, got, c.want)
		}
	}
	if policy.ProfileForRole("guest") != nil {
		t.Error("unknown role should have no profile")
	}
}

func TestAuthGateInvoiceOwnership(t *testing.T) {
	conn := dbtest.Open(t)
	admin := mkUser(t, conn, "admin@example.test", models.RoleAdmin)
	owner := mkUser(t, conn, "owner@example.test", models.RoleUser)
	other := mkUser(t, conn, "other@example.test", models.RoleUser)
	ag := policy.NewAuthGate(conn, time.Minute)

	inv := &models.Invoice{Customer: &models.Customer{UserID: owner.ID}}
	as := func(id uint) context.Context { return auth.WithUserID(context.Background(), id) }

	if err := ag.Authorize(as(owner.ID), gate.ActionView, policy.ResourceInvoice, inv); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if err := ag.Authorize(as(admin.ID), gate.ActionView, policy.ResourceInvoice, inv); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := ag.Authorize(as(other.ID), gate.ActionView, policy.ResourceInvoice, inv); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("other: %v", err)
	}
	if err := ag.Authorize(context.Background(), gate.ActionView, policy.ResourceInvoice, inv); !errors.Is(err, gate.ErrUnauthenticated) {
		t.Fatalf("anonymous: %v", err)
	}
	if err := ag.Authorize(as(owner.ID), gate.ActionManage, policy.ResourceInvoice, inv); !errors.Is(err, gate.ErrForbidden) {
		t.Fatalf("owner manage: %v", err)
	}
}

func TestAuthGateCan(t *testing.T) {
	conn := dbtest.Open(t)
	admin := mkUser(t, conn, "admin@example.test", models.RoleAdmin)
	user := mkUser(t, conn, "user@example.test", models.RoleUser)
	ag := policy.NewAuthGate(conn, time.Minute)
	as := func(id uint) context.Context { return auth.WithUserID(context.Background(), id) }

	if !ag.Can(as(admin.ID), gate.ActionManage, policy.ResourceUser) {
		t.Error("admin should manage users")
	}
	if ag.Can(as(user.ID), gate.ActionManage, policy.ResourceUser) {
		t.Error("user must not manage users")
	}
	if !ag.Can(as(user.ID), gate.ActionList, policy.ResourceInventory) {
		t.Error("user should list inventory")
	}
	if ag.Can(context.Background(), gate.ActionList, policy.ResourceInventory) {
		t.Error("anonymous callers hold nothing")
	}
}

func TestAuthGateInvalidateUser(t *testing.T) {
	conn := dbtest.Open(t)
	u := mkUser(t, conn, "u@example.test", models.RoleUser)
	ag := policy.NewAuthGate(conn, time.Hour)
	ctx := context.Background()

	if ag.IsAdmin(ctx, u.ID) {
		t.Fatal("user should not be admin")
	}
	if err := conn.Model(&u).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatal(err)
	}
	if ag.IsAdmin(ctx, u.ID) {
		t.Fatal("cached profile should still apply")
	}
	ag.InvalidateUser(u.ID)
	if !ag.IsAdmin(ctx, u.ID) {
		t.Fatal("role change not visible after invalidation")
	}
	if ag.IsAdmin(ctx, 0) || ag.IsAdmin(ctx, 999) {
		t.Fatal("unknown users are never admin")
	}
}

func TestMiddleware(t *testing.T) {
	conn := dbtest.Open(t)
	admin := mkUser(t, conn, "admin@example.test", models.RoleAdmin)
	user := mkUser(t, conn, "user@example.test", models.RoleUser)
	ag := policy.NewAuthGate(conn, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name string
		h    http.Handler
		uid  uint
		want int
	}{
		{"permission anonymous", ag.RequirePermission(policy.ResourceInventory, gate.ActionCreate)(ok), 0, http.StatusUnauthorized},
		{"permission denied", ag.RequirePermission(policy.ResourceInventory, gate.ActionCreate)(ok), user.ID, http.StatusForbidden},
		{"permission granted", ag.RequirePermission(policy.ResourceInventory, gate.ActionList)(ok), user.ID, http.StatusNoContent},
		{"admin anonymous", ag.RequireAdmin()(ok), 0, http.StatusUnauthorized},
		{"admin denied", ag.RequireAdmin()(ok), user.ID, http.StatusForbidden},
		{"admin granted", ag.RequireAdmin()(ok), admin.ID, http.StatusNoContent},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if c.uid != 0 {
				req = req.WithContext(auth.WithUserID(req.Context(), c.uid))
			}
			rec := httptest.NewRecorder()
			c.h.ServeHTTP(rec, req)
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d", rec.Code, c.want)
			}
		})
	}
}
