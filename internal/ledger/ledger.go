// Package ledger reconciles payments against invoices. Recording a payment
// persists it, recomputes the amount paid and moves the invoice to paid once
// the payments cover its total.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-inventory/internal/db"
	"github.com/diewo77/go-inventory/internal/metrics"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/internal/outbox"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvoiceRequired = errors.New("invoice id is required")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidMethod   = errors.New("unknown payment method")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// IsValidation reports whether err was caused by the payment input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvoiceRequired) || errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidMethod)
}

// PaymentInput is a payment to apply. Zero PaymentDate means today and an
// empty Method means check.
type PaymentInput struct {
	InvoiceID       uint
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          models.PaymentMethod
	ReferenceNumber *string
	Notes           *string
	CreatedBy       uint
}

// Receipt describes the outcome of RecordPayment.
type Receipt struct {
	Payment    models.Payment
	AmountPaid decimal.Decimal
	BalanceDue decimal.Decimal
	// MarkedPaid is true only when this payment moved the invoice to paid.
	MarkedPaid bool
	Status     models.InvoiceStatus
}

// Summary is the reconciliation state of one invoice.
type Summary struct {
	InvoiceID   uint                 `json:"invoice_id"`
	Status      models.InvoiceStatus `json:"status"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	AmountPaid  decimal.Decimal      `json:"amount_paid"`
	BalanceDue  decimal.Decimal      `json:"balance_due"`
}

type Ledger struct {
	db      *gorm.DB
	events  bool
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	// markPaid runs inside a savepoint; replaced in tests.
	markPaid func(tx *gorm.DB, inv *models.Invoice, paid decimal.Decimal) error
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEvents writes billing events to the outbox in the payment transaction.
func WithEvents() Option { return func(l *Ledger) { l.events = true } }

func WithMetrics(m *metrics.Metrics) Option { return func(l *Ledger) { l.metrics = m } }

func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

func New(conn *gorm.DB, logger *zap.Logger, opts ...Option) *Ledger {
	l := &Ledger{db: conn, logger: logger, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	l.markPaid = l.transitionToPaid
	return l
}

func (l *Ledger) normalize(in *PaymentInput) error {
	if in.InvoiceID == 0 {
		return ErrInvoiceRequired
	}
	in.Amount = models.RoundMoney(in.Amount)
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if in.Method == "" {
		in.Method = models.PaymentMethodCheck
	}
	valid := false
	for _, m := range models.PaymentMethods {
		if in.Method == m {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, in.Method)
	}
	if in.PaymentDate.IsZero() {
		in.PaymentDate = l.now()
	}
	in.PaymentDate = models.StartOfDay(in.PaymentDate)
	return nil
}

// RecordPayment persists a payment and, when the payments of the invoice now
// cover its total, sets the invoice status to paid.
//
// Input is validated before any write. The invoice row is locked for the
// duration of the transaction on postgres so concurrent payments on one
// invoice serialize. A failure of the paid transition is rolled back to its
// savepoint, logged and swallowed: the payment still commits.
func (l *Ledger) RecordPayment(ctx context.Context, in PaymentInput) (*Receipt, error) {
	if err := l.normalize(&in); err != nil {
		return nil, err
	}

	var rc Receipt
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		q := tx
		if db.IsPostgres(tx) {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&inv, in.InvoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return fmt.Errorf("load invoice: %w", err)
		}

		pay := models.Payment{
			InvoiceID:       inv.ID,
			Amount:          in.Amount,
			PaymentDate:     in.PaymentDate,
			PaymentMethod:   in.Method,
			ReferenceNumber: in.ReferenceNumber,
			Notes:           in.Notes,
			CreatedBy:       in.CreatedBy,
		}
		if err := tx.Create(&pay).Error; err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		paid, err := sumPayments(tx, inv.ID)
		if err != nil {
			return err
		}

		if l.events {
			if err := outbox.Enqueue(tx, outbox.EventPaymentRecorded, inv.ID, outbox.PaymentRecorded{
				PaymentID:     pay.ID,
				InvoiceID:     inv.ID,
				Amount:        pay.Amount,
				PaymentMethod: pay.PaymentMethod,
				PaymentDate:   pay.PaymentDate.Format(time.DateOnly),
				TotalPaid:     paid,
			}); err != nil {
				return err
			}
		}

		rc.Payment = pay
		rc.AmountPaid = paid
		rc.BalanceDue = inv.TotalAmount.Sub(paid)
		rc.Status = inv.Status

		if paid.GreaterThanOrEqual(inv.TotalAmount) && inv.Status != models.InvoiceStatusPaid {
			err := tx.Transaction(func(sp *gorm.DB) error {
				return l.markPaid(sp, &inv, paid)
			})
			if err != nil {
				l.metrics.StatusUpdateFailed()
				l.logger.Error("invoice status update failed after payment",
					zap.Uint("invoice_id", inv.ID),
					zap.Uint("payment_id", pay.ID),
					zap.Error(err))
				return nil
			}
			rc.MarkedPaid = true
			rc.Status = models.InvoiceStatusPaid
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.metrics.PaymentRecorded()
	if rc.MarkedPaid {
		l.metrics.InvoicePaid()
	}
	l.logger.Info("payment recorded",
		zap.Uint("invoice_id", in.InvoiceID),
		zap.Uint("payment_id", rc.Payment.ID),
		zap.String("amount", rc.Payment.Amount.StringFixed(models.MoneyPlaces)),
		zap.String("balance_due", rc.BalanceDue.StringFixed(models.MoneyPlaces)),
		zap.Bool("marked_paid", rc.MarkedPaid))
	return &rc, nil
}

// transitionToPaid is the single status write of reconciliation. The status
// guard keeps it a no-op for an invoice another writer already marked paid.
func (l *Ledger) transitionToPaid(tx *gorm.DB, inv *models.Invoice, paid decimal.Decimal) error {
	res := tx.Model(&models.Invoice{}).
		Where("id = ? AND status <> ?", inv.ID, models.InvoiceStatusPaid).
		Updates(map[string]any{"status": models.InvoiceStatusPaid, "updated_at": l.now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 || !l.events {
		return nil
	}
	return outbox.Enqueue(tx, outbox.EventInvoicePaid, inv.ID, outbox.InvoicePaid{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		TotalAmount:   inv.TotalAmount,
		TotalPaid:     paid,
	})
}

// Balance returns the reconciliation state of an invoice.
func (l *Ledger) Balance(ctx context.Context, invoiceID uint) (*Summary, error) {
	var inv models.Invoice
	if err := l.db.WithContext(ctx).First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	paid, err := sumPayments(l.db.WithContext(ctx), invoiceID)
	if err != nil {
		return nil, err
	}
	return &Summary{
		InvoiceID:   inv.ID,
		Status:      inv.Status,
		TotalAmount: inv.TotalAmount,
		AmountPaid:  paid,
		BalanceDue:  inv.TotalAmount.Sub(paid),
	}, nil
}

// sumPayments adds amounts in Go so sqlite's float SUM never rounds cents.
func sumPayments(tx *gorm.DB, invoiceID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := tx.Model(&models.Payment{}).Where("invoice_id = ?", invoiceID).Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}
