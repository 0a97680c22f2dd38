package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedOptions selects what Seed writes.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	SampleCatalog bool
}

// Seed is idempotent: the admin is matched by email and the sample catalog
// is only inserted into an empty inventory.
func Seed(conn *gorm.DB, opts SeedOptions) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		var adminID *uint
		if opts.AdminEmail != "" {
			id, err := seedAdmin(tx, opts.AdminEmail, opts.AdminPassword)
			if err != nil {
				return err
			}
			adminID = &id
		}
		if opts.SampleCatalog {
			return seedCatalog(tx, adminID)
		}
		return nil
	})
}

func seedAdmin(tx *gorm.DB, email, password string) (uint, error) {
	var user models.User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.Role != models.RoleAdmin {
			if err := tx.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
				return 0, fmt.Errorf("promote admin: %w", err)
			}
		}
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, err
	}
	user = models.User{Email: email, Name: "Administrator", Password: hash, Role: models.RoleAdmin}
	if err := tx.Create(&user).Error; err != nil {
		return 0, fmt.Errorf("create admin: %w", err)
	}
	return user.ID, nil
}

type sampleItem struct {
	name, category, sku, price string
	stock                      int
}

var sampleCatalog = []sampleItem{
	{"MacBook Pro 14\"", "Laptops", "LAP-MBP14", "1999.00", 12},
	{"ThinkPad X1 Carbon", "Laptops", "LAP-X1C", "1649.00", 7},
	{"iPhone 15", "Smartphones", "PHN-IP15", "799.00", 25},
	{"Galaxy S24", "Smartphones", "PHN-GS24", "749.99", 4},
	{"AirPods Pro", "Audio", "AUD-APP2", "249.00", 40},
	{"Sony WH-1000XM5", "Audio", "AUD-WH5", "399.99", 9},
	{"Dell UltraSharp 27\"", "Monitors", "MON-U27", "579.00", 15},
	{"USB-C Charger 65W", "Accessories", "ACC-CHG65", "49.90", 120},
}

func seedCatalog(tx *gorm.DB, createdBy *uint) error {
	var count int64
	if err := tx.Model(&models.InventoryItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	items := make([]models.InventoryItem, 0, len(sampleCatalog))
	for _, s := range sampleCatalog {
		sku := s.sku
		items = append(items, models.InventoryItem{
			Name:          s.name,
			Category:      s.category,
			SKU:           &sku,
			Price:         decimal.RequireFromString(s.price),
			StockQuantity: s.stock,
			CreatedBy:     createdBy,
		})
	}
	return tx.Create(&items).Error
}
