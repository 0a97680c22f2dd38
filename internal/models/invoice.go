package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled,
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// PaymentTerms controls the default due date of an invoice.
type PaymentTerms string

const (
	TermsNet15        PaymentTerms = "Net 15"
	TermsNet30        PaymentTerms = "Net 30"
	TermsNet60        PaymentTerms = "Net 60"
	TermsDueOnReceipt PaymentTerms = "Due on Receipt"
)

var AllPaymentTerms = []PaymentTerms{TermsNet15, TermsNet30, TermsNet60, TermsDueOnReceipt}

// Days returns the number of days between issue and due date.
func (t PaymentTerms) Days() int {
	switch t {
	case TermsNet15:
		return 15
	case TermsNet60:
		return 60
	case TermsDueOnReceipt:
		return 0
	default:
		return 30
	}
}

// Invoice is a bill issued to a customer. It is never deleted.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	InvoiceNumber string          `gorm:"size:50;uniqueIndex;not null" json:"invoice_number"`
	CustomerID    uint            `gorm:"index;not null" json:"customer_id"`
	Customer      *Customer       `gorm:"constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	CreatedBy     uint            `gorm:"not null" json:"created_by"`
	Status        InvoiceStatus   `gorm:"size:20;not null;default:draft;index" json:"status"`
	IssueDate     time.Time       `gorm:"type:date;not null" json:"issue_date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxRate       decimal.Decimal `gorm:"type:numeric(5,4);not null" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Notes         *string         `gorm:"type:text" json:"notes"`
	Terms         PaymentTerms    `gorm:"size:50;not null;default:'Net 30'" json:"terms"`
	Items         []InvoiceItem   `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments      []Payment       `gorm:"constraint:OnDelete:RESTRICT" json:"payments,omitempty"`

	AmountPaid decimal.Decimal `gorm:"-" json:"amount_paid"`
	BalanceDue decimal.Decimal `gorm:"-" json:"balance_due"`
	IsOverdue  bool            `gorm:"-" json:"is_overdue"`
}

// InvoiceItem is one billed line. LineTotal is Quantity * UnitPrice.
type InvoiceItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	InvoiceID       uint            `gorm:"index;not null" json:"invoice_id"`
	InventoryItemID *uint           `gorm:"index" json:"inventory_item_id"`
	InventoryItem   *InventoryItem  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Description     string          `gorm:"size:500;not null" json:"description"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

// GetUserID returns the login owning the invoice's customer, or 0 when the
// customer was not loaded.
func (i *Invoice) GetUserID() uint {
	if i.Customer == nil {
		return 0
	}
	return i.Customer.UserID
}

// OverdueOn reports whether the invoice is overdue on the given day. Stored
// "overdue" counts, and so does a sent invoice past its due date.
func (i *Invoice) OverdueOn(today time.Time) bool {
	switch i.Status {
	case InvoiceStatusOverdue:
		return true
	case InvoiceStatusSent:
		return i.DueDate.Before(StartOfDay(today))
	}
	return false
}

// Summarize fills the derived fields from the loaded payments.
func (i *Invoice) Summarize(today time.Time) {
	paid := decimal.Zero
	for _, p := range i.Payments {
		paid = paid.Add(p.Amount)
	}
	i.AmountPaid = paid
	i.BalanceDue = i.TotalAmount.Sub(paid)
	i.IsOverdue = i.OverdueOn(today)
}

// InvoiceNumber formats the yearly sequence, e.g. INV-2026-0007.
func InvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute sets LineTotal from Quantity and UnitPrice.
func (it *InvoiceItem) Compute() {
	it.LineTotal = RoundMoney(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
}

// ParseDate accepts "2006-01-02" or RFC 3339 and returns midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t), nil
}
