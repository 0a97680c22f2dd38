package models

import "time"

// OutboxStatus tracks relay progress of an OutboxEvent.
type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	// OutboxFailed rows exhausted their publish attempts and are skipped by
	// the relay until an operator resets them to pending.
	OutboxFailed OutboxStatus = "failed"
)

// OutboxEvent is a billing event written in the same transaction as the
// change it describes and relayed to the message broker afterwards.
type OutboxEvent struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	EventID     string       `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	CreatedAt   time.Time    `json:"created_at"`
	EventType   string       `gorm:"size:100;not null" json:"event_type"`
	AggregateID uint         `gorm:"index;not null" json:"aggregate_id"`
	Payload     string       `gorm:"type:text;not null" json:"payload"`
	Status      OutboxStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Attempts    int          `gorm:"not null;default:0" json:"attempts"`
	LastError   *string      `gorm:"type:text" json:"last_error,omitempty"`
	SentAt      *time.Time   `json:"sent_at,omitempty"`
}

// All lists every model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Customer{}, &InventoryItem{}, &Invoice{}, &InvoiceItem{}, &Payment{}, &OutboxEvent{},
	}
}
