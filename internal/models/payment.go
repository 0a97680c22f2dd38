package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodCash, PaymentMethodCheck, PaymentMethodCreditCard, PaymentMethodBankTransfer, PaymentMethodOther,
}

// Payment is an immutable receipt applied to an invoice.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	InvoiceID       uint            `gorm:"index;not null" json:"invoice_id"`
	Invoice         *Invoice        `json:"invoice,omitempty"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"type:date;not null" json:"payment_date"`
	PaymentMethod   PaymentMethod   `gorm:"size:20;not null;default:check" json:"payment_method"`
	ReferenceNumber *string         `gorm:"size:100" json:"reference_number"`
	Notes           *string         `gorm:"type:text" json:"notes"`
	CreatedBy       uint            `gorm:"not null" json:"created_by"`
}
