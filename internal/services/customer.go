package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/validation"
	"gorm.io/gorm"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

type CustomerInput struct {
	UserID         *uint  `json:"user_id"`
	CompanyName    string `json:"company_name"`
	BillingAddress string `json:"billing_address"`
	City           string `json:"city"`
	State          string `json:"state"`
	ZipCode        string `json:"zip_code"`
	Country        string `json:"country"`
	Phone          string `json:"phone"`
	TaxID          string `json:"tax_id"`
}

// List returns every customer for admins and only the caller's own record
// otherwise.
func (s *CustomerService) List(ctx context.Context, viewer Viewer) ([]models.Customer, error) {
	tx := s.db.WithContext(ctx).Preload("User").Order("created_at DESC").Order("id DESC")
	if !viewer.Admin {
		tx = tx.Where("user_id = ?", viewer.UserID)
	}
	customers := []models.Customer{}
	if err := tx.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	v := validation.Violations{}
	validation.Present("user_id", in.UserID, v)
	if in.UserID != nil && *in.UserID == 0 {
		v.Add("user_id", "required")
	}
	if !v.Empty() {
		return nil, invalid("User ID is required", v)
	}

	c := models.Customer{
		UserID:         *in.UserID,
		CompanyName:    strings.TrimSpace(in.CompanyName),
		BillingAddress: in.BillingAddress,
		City:           in.City,
		State:          in.State,
		ZipCode:        in.ZipCode,
		Country:        in.Country,
		Phone:          in.Phone,
		TaxID:          in.TaxID,
	}
	if c.Country == "" {
		c.Country = "US"
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, c.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("User")
			}
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Message: "Customer already exists for this user"}
			}
			return err
		}
		c.User = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ForUser returns the customer record of a login, or ErrNotFound.
func (s *CustomerService) ForUser(ctx context.Context, userID uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Customer")
		}
		return nil, err
	}
	return &c, nil
}
