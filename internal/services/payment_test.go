package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-inventory/internal/db/dbtest"
	"github.com/diewo77/go-inventory/internal/models"
)

func TestPaymentListScope(t *testing.T) {
	conn := dbtest.Open(t)
	invoices := newInvoiceService(conn)
	svc := NewPaymentService(conn)
	ctx := context.Background()
	a := mkCustomer(t, conn, mkUser(t, conn, models.RoleUser))
	b := mkCustomer(t, conn, mkUser(t, conn, models.RoleUser))
	ia := mkInvoice(t, invoices, a, models.InvoiceStatusSent, "", "")
	ib := mkInvoice(t, invoices, b, models.InvoiceStatusSent, "", "")

	day := models.StartOfDay(fixedNow)
	for _, p := range []models.Payment{
		{InvoiceID: ia.ID, Amount: dec("10"), PaymentDate: day.AddDate(0, 0, -2), PaymentMethod: models.PaymentMethodCash, CreatedBy: 1},
		{InvoiceID: ia.ID, Amount: dec("20"), PaymentDate: day, PaymentMethod: models.PaymentMethodCash, CreatedBy: 1},
		{InvoiceID: ib.ID, Amount: dec("30"), PaymentDate: day, PaymentMethod: models.PaymentMethodCash, CreatedBy: 1},
	} {
		if err := conn.Create(&p).Error; err != nil {
			t.Fatal(err)
		}
	}

	all, err := svc.List(ctx, Viewer{Admin: true}, nil)
	if err != nil || len(all) != 3 {
		t.Fatalf("admin: %v %d", err, len(all))
	}
	if all[0].PaymentDate.Before(all[2].PaymentDate) {
		t.Fatal("want newest first")
	}

	own, err := svc.List(ctx, Viewer{UserID: a.UserID}, nil)
	if err != nil || len(own) != 2 {
		t.Fatalf("owner: %v %d", err, len(own))
	}
	if !own[0].Amount.Equal(dec("20")) || own[0].Invoice == nil || own[0].Invoice.Customer == nil {
		t.Fatalf("unexpected first payment %+v", own[0])
	}

	one, err := svc.List(ctx, Viewer{Admin: true}, &ib.ID)
	if err != nil || len(one) != 1 || one[0].InvoiceID != ib.ID {
		t.Fatalf("by invoice: %v %+v", err, one)
	}
	none, err := svc.List(ctx, Viewer{UserID: a.UserID}, &ib.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("foreign invoice payments leaked: %+v", none)
	}
}
