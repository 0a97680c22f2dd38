package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity under which an item counts as low stock.
const LowStockThreshold = 10

// InventoryItem is a catalog entry with its on-hand quantity.
type InventoryItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   *string         `gorm:"type:text" json:"description"`
	Category      string          `gorm:"size:100;not null;index" json:"category"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	SKU           *string         `gorm:"column:sku;size:100;uniqueIndex" json:"sku"`
	ImageURL      *string         `gorm:"size:1024" json:"image_url"`
	CreatedBy     *uint           `gorm:"index" json:"created_by"`
}

func (i *InventoryItem) LowStock() bool { return i.StockQuantity < LowStockThreshold }
