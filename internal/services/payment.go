package services

import (
	"context"

	"github.com/diewo77/go-inventory/internal/models"
	"gorm.io/gorm"
)

// PaymentService lists recorded payments. Recording goes through the ledger.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// List returns payments newest first, optionally for one invoice. Non-admins
// only see payments on their own invoices.
func (s *PaymentService) List(ctx context.Context, viewer Viewer, invoiceID *uint) ([]models.Payment, error) {
	tx := s.db.WithContext(ctx).
		Preload("Invoice").
		Preload("Invoice.Customer").
		Order("payment_date DESC").Order("id DESC")
	if invoiceID != nil {
		tx = tx.Where("invoice_id = ?", *invoiceID)
	}
	if !viewer.Admin {
		owned := s.db.Model(&models.Invoice{}).Select("invoices.id").
			Joins("JOIN customers ON customers.id = invoices.customer_id").
			Where("customers.user_id = ?", viewer.UserID)
		tx = tx.Where("invoice_id IN (?)", owned)
	}
	payments := []models.Payment{}
	if err := tx.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
