package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// InventoryInput is a create or partial update payload. Nil fields are left
// unchanged on update.
type InventoryInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	SKU           *string          `json:"sku"`
	ImageURL      *string          `json:"image_url"`
}

type InventoryQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type InventoryPage struct {
	Items      []models.InventoryItem `json:"items"`
	Pagination Pagination             `json:"pagination"`
}

type InventoryStats struct {
	TotalItems    int64           `json:"totalItems"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	LowStockItems int64           `json:"lowStockItems"`
	Categories    int             `json:"categories"`
}

func (s *InventoryService) List(ctx context.Context, q InventoryQuery) (*InventoryPage, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	filter := func(tx *gorm.DB) *gorm.DB {
		if c := strings.TrimSpace(q.Category); c != "" && c != "all" {
			tx = tx.Where("category = ?", c)
		}
		if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
			like := "%" + term + "%"
			tx = tx.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ?", like, like, like)
		}
		return tx
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, err
	}
	items := []models.InventoryItem{}
	err := s.db.WithContext(ctx).Scopes(filter).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &InventoryPage{
		Items:      items,
		Pagination: Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages(total, limit)},
	}, nil
}

func (s *InventoryService) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Item")
		}
		return nil, err
	}
	return &item, nil
}

func (s *InventoryService) Create(ctx context.Context, in InventoryInput, createdBy uint) (*models.InventoryItem, error) {
	v := validation.Violations{}
	if in.Name == nil {
		v.Add("name", "required")
	} else {
		validation.Required("name", *in.Name, v)
	}
	if in.Category == nil {
		v.Add("category", "required")
	} else {
		validation.Required("category", *in.Category, v)
	}
	validation.Present("price", in.Price, v)
	validation.Present("stock_quantity", in.StockQuantity, v)
	if !v.Empty() {
		return nil, invalid("Missing required fields", v)
	}
	if err := checkAmounts(in); err != nil {
		return nil, err
	}

	item := models.InventoryItem{
		Name:          strings.TrimSpace(*in.Name),
		Description:   in.Description,
		Category:      strings.TrimSpace(*in.Category),
		Price:         models.RoundMoney(*in.Price),
		StockQuantity: *in.StockQuantity,
		SKU:           normalizeSKU(in.SKU),
		ImageURL:      in.ImageURL,
	}
	if createdBy != 0 {
		item.CreatedBy = &createdBy
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, translateSKU(err)
	}
	return &item, nil
}

func (s *InventoryService) Update(ctx context.Context, id uint, in InventoryInput) (*models.InventoryItem, error) {
	v := validation.Violations{}
	if in.Name != nil {
		validation.Required("name", *in.Name, v)
	}
	if in.Category != nil {
		validation.Required("category", *in.Category, v)
	}
	if !v.Empty() {
		return nil, invalid("Name and category cannot be empty", v)
	}
	if err := checkAmounts(in); err != nil {
		return nil, err
	}

	var item models.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Item")
			}
			return err
		}
		updates := map[string]any{}
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Category != nil {
			updates["category"] = strings.TrimSpace(*in.Category)
		}
		if in.Price != nil {
			updates["price"] = models.RoundMoney(*in.Price)
		}
		if in.StockQuantity != nil {
			updates["stock_quantity"] = *in.StockQuantity
		}
		if in.SKU != nil {
			updates["sku"] = normalizeSKU(in.SKU)
		}
		if in.ImageURL != nil {
			updates["image_url"] = *in.ImageURL
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return translateSKU(err)
		}
		return tx.First(&item, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *InventoryService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.InventoryItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("Item")
	}
	return nil
}

// Categories returns the distinct non-empty categories in lexical order.
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).
		Where("category <> ''").
		Distinct("category").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, err
	}
	sort.Strings(cats)
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}

func (s *InventoryService) Stats(ctx context.Context) (*InventoryStats, error) {
	var rows []models.InventoryItem
	if err := s.db.WithContext(ctx).Select("price", "stock_quantity", "category").Find(&rows).Error; err != nil {
		return nil, err
	}
	st := &InventoryStats{TotalItems: int64(len(rows)), TotalValue: decimal.Zero}
	cats := map[string]struct{}{}
	for i := range rows {
		r := &rows[i]
		st.TotalValue = st.TotalValue.Add(r.Price.Mul(decimal.NewFromInt(int64(r.StockQuantity))))
		if r.LowStock() {
			st.LowStockItems++
		}
		cats[r.Category] = struct{}{}
	}
	st.Categories = len(cats)
	return st, nil
}

func checkAmounts(in InventoryInput) error {
	v := validation.Violations{}
	if in.Price != nil {
		validation.NonNegative("price", *in.Price, v)
	}
	if in.StockQuantity != nil {
		validation.NonNegativeInt("stock_quantity", *in.StockQuantity, v)
	}
	if !v.Empty() {
		return invalid("Price and stock quantity must be non-negative", v)
	}
	return nil
}

// normalizeSKU stores blank SKUs as NULL so they never collide.
func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*sku)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func translateSKU(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Message: "SKU already exists"}
	}
	return err
}
