package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-inventory/internal/db/dbtest"
	"github.com/diewo77/go-inventory/internal/models"
)

func TestCustomerCreate(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewCustomerService(conn)
	ctx := context.Background()
	u := mkUser(t, conn, models.RoleUser)

	_, err := svc.Create(ctx, CustomerInput{CompanyName: "Acme"})
	wantValidation(t, err, "User ID is required")

	if _, err := svc.Create(ctx, CustomerInput{UserID: ptr(uint(999))}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}

	c, err := svc.Create(ctx, CustomerInput{UserID: &u.ID, CompanyName: " Acme "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Country != "US" || c.CompanyName != "Acme" || c.User == nil || c.User.ID != u.ID {
		t.Fatalf("unexpected customer %+v", c)
	}

	if _, err := svc.Create(ctx, CustomerInput{UserID: &u.ID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}

	got, err := svc.ForUser(ctx, u.ID)
	if err != nil || got.ID != c.ID {
		t.Fatalf("for user: %v %+v", err, got)
	}
}

func TestCustomerListScope(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewCustomerService(conn)
	ctx := context.Background()
	a := mkUser(t, conn, models.RoleUser)
	b := mkUser(t, conn, models.RoleUser)
	mkCustomer(t, conn, a)
	mkCustomer(t, conn, b)

	all, err := svc.List(ctx, Viewer{UserID: 99, Admin: true})
	if err != nil || len(all) != 2 {
		t.Fatalf("admin list: %v %d", err, len(all))
	}
	own, err := svc.List(ctx, Viewer{UserID: a.ID})
	if err != nil || len(own) != 1 || own[0].UserID != a.ID {
		t.Fatalf("user list: %v %+v", err, own)
	}
	if own[0].User == nil || own[0].User.Email != a.Email {
		t.Fatal("user not preloaded")
	}
}
