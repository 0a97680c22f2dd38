// Package outbox records billing events inside business transactions and
// relays them to the message broker.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/diewo77/go-inventory/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EventPaymentRecorded = "payment.recorded"
	EventInvoicePaid     = "invoice.paid"
)

// Envelope is the message value published to the broker.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type PaymentRecorded struct {
	PaymentID     uint                 `json:"payment_id"`
	InvoiceID     uint                 `json:"invoice_id"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	PaymentDate   string               `json:"payment_date"`
	TotalPaid     decimal.Decimal      `json:"total_paid"`
}

type InvoicePaid struct {
	InvoiceID     uint            `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
}

// Enqueue writes a pending event on tx. invoiceID keys the broker message.
func Enqueue(tx *gorm.DB, eventType string, invoiceID uint, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}
	id := uuid.NewString()
	now := time.Now().UTC()
	env, err := json.Marshal(Envelope{ID: id, Type: eventType, OccurredAt: now, Data: raw})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	ev := models.OutboxEvent{
		EventID:     id,
		CreatedAt:   now,
		EventType:   eventType,
		AggregateID: invoiceID,
		Payload:     string(env),
		Status:      models.OutboxPending,
	}
	if err := tx.Create(&ev).Error; err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}
