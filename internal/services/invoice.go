package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// numberAttempts bounds retries when two invoices race for the same number.
const numberAttempts = 3

type InvoiceService struct {
	db             *gorm.DB
	defaultTaxRate decimal.Decimal
	now            func() time.Time
}

func NewInvoiceService(db *gorm.DB, defaultTaxRate decimal.Decimal) *InvoiceService {
	return &InvoiceService{db: db, defaultTaxRate: defaultTaxRate, now: time.Now}
}

type InvoiceItemInput struct {
	InventoryItemID *uint            `json:"inventory_item_id"`
	Description     string           `json:"description"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
}

type InvoiceInput struct {
	CustomerID *uint                `json:"customer_id"`
	Items      []InvoiceItemInput   `json:"items"`
	Status     models.InvoiceStatus `json:"status"`
	IssueDate  string               `json:"issue_date"`
	DueDate    string               `json:"due_date"`
	TaxRate    *decimal.Decimal     `json:"tax_rate"`
	Terms      models.PaymentTerms  `json:"terms"`
	Notes      *string              `json:"notes"`
}

type InvoiceQuery struct {
	Status string
	Page   int
	Limit  int
}

type InvoicePage struct {
	Invoices   []models.Invoice `json:"invoices"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
}

type BillingStats struct {
	TotalInvoices   int             `json:"totalInvoices"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaidInvoices    int             `json:"paidInvoices"`
	OverdueInvoices int             `json:"overdueInvoices"`
	PendingAmount   decimal.Decimal `json:"pendingAmount"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
}

// Create validates the payload, prices every line and inserts the invoice
// with its items in one transaction.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput, createdBy uint) (*models.Invoice, error) {
	inv, err := s.draft(in, createdBy)
	if err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.insert(tx, inv, in.Items)
		})
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) || attempt == numberAttempts {
			break
		}
		inv.ID = 0
		inv.Items = nil
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "Could not allocate an invoice number"}
		}
		return nil, err
	}
	return s.Get(ctx, inv.ID)
}

// draft builds the invoice header from the payload without touching the
// database.
func (s *InvoiceService) draft(in InvoiceInput, createdBy uint) (*models.Invoice, error) {
	if in.CustomerID == nil || *in.CustomerID == 0 || len(in.Items) == 0 {
		v := validation.Violations{}
		if in.CustomerID == nil || *in.CustomerID == 0 {
			v.Add("customer_id", "required")
		}
		if len(in.Items) == 0 {
			v.Add("items", "required")
		}
		return nil, invalid("Customer ID and items are required", v)
	}

	v := validation.Violations{}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.Quantity <= 0 {
			v.Add(field+".quantity", "must_be_positive")
		}
		if it.UnitPrice != nil {
			validation.NonNegative(field+".unit_price", *it.UnitPrice, v)
		} else if it.InventoryItemID == nil {
			v.Add(field+".unit_price", "required")
		}
		if strings.TrimSpace(it.Description) == "" && it.InventoryItemID == nil {
			v.Add(field+".description", "required")
		}
	}

	status := in.Status
	if status == "" {
		status = models.InvoiceStatusDraft
	}
	validation.OneOf("status", status, []models.InvoiceStatus{models.InvoiceStatusDraft, models.InvoiceStatusSent}, v)

	terms := in.Terms
	if terms == "" {
		terms = models.TermsNet30
	}
	validation.OneOf("terms", terms, models.AllPaymentTerms, v)

	rate := s.defaultTaxRate
	if in.TaxRate != nil {
		rate = *in.TaxRate
	}
	validation.Range("tax_rate", rate, decimal.Zero, decimal.NewFromInt(1), v)

	issue := models.StartOfDay(s.now())
	if in.IssueDate != "" {
		d, err := models.ParseDate(in.IssueDate)
		if err != nil {
			v.Add("issue_date", "invalid_date")
		}
		issue = d
	}
	due := issue.AddDate(0, 0, terms.Days())
	if in.DueDate != "" {
		d, err := models.ParseDate(in.DueDate)
		if err != nil {
			v.Add("due_date", "invalid_date")
		} else if d.Before(issue) {
			v.Add("due_date", "before_issue_date")
		}
		due = d
	}
	if !v.Empty() {
		return nil, invalid("Invalid invoice", v)
	}

	return &models.Invoice{
		CustomerID: *in.CustomerID,
		CreatedBy:  createdBy,
		Status:     status,
		IssueDate:  issue,
		DueDate:    due,
		TaxRate:    rate,
		Terms:      terms,
		Notes:      in.Notes,
	}, nil
}

func (s *InvoiceService) insert(tx *gorm.DB, inv *models.Invoice, lines []InvoiceItemInput) error {
	var customer models.Customer
	if err := tx.First(&customer, inv.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Customer")
		}
		return err
	}

	subtotal := decimal.Zero
	items := make([]models.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		item := models.InvoiceItem{
			InventoryItemID: line.InventoryItemID,
			Description:     strings.TrimSpace(line.Description),
			Quantity:        line.Quantity,
		}
		if line.UnitPrice != nil {
			item.UnitPrice = models.RoundMoney(*line.UnitPrice)
		}
		if line.InventoryItemID != nil {
			var stock models.InventoryItem
			if err := tx.First(&stock, *line.InventoryItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("Inventory item")
				}
				return err
			}
			if item.Description == "" {
				item.Description = stock.Name
			}
			if line.UnitPrice == nil {
				item.UnitPrice = stock.Price
			}
		}
		item.Compute()
		subtotal = subtotal.Add(item.LineTotal)
		items = append(items, item)
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = models.RoundMoney(subtotal.Mul(inv.TaxRate))
	inv.TotalAmount = subtotal.Add(inv.TaxAmount)
	inv.Items = items

	number, err := nextInvoiceNumber(tx, inv.IssueDate.Year())
	if err != nil {
		return err
	}
	inv.InvoiceNumber = number
	return tx.Create(inv).Error
}

func nextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	var count int64
	prefix := fmt.Sprintf("INV-%d-", year)
	if err := tx.Model(&models.Invoice{}).Where("invoice_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", fmt.Errorf("count invoices: %w", err)
	}
	return models.InvoiceNumber(year, int(count)+1), nil
}

// visibleTo restricts non-admins to invoices of their own customer record.
func (s *InvoiceService) visibleTo(viewer Viewer) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if viewer.Admin {
			return tx
		}
		return tx.Where("customer_id IN (?)",
			s.db.Model(&models.Customer{}).Select("id").Where("user_id = ?", viewer.UserID))
	}
}

func (s *InvoiceService) List(ctx context.Context, viewer Viewer, q InvoiceQuery) (*InvoicePage, error) {
	page, limit := normalizePage(q.Page, q.Limit)
	status := strings.ToLower(strings.TrimSpace(q.Status))
	if status != "" && status != "all" && !models.InvoiceStatus(status).Valid() {
		return nil, invalid("Invalid status filter", validation.Violations{"status": "invalid_choice"})
	}
	today := models.StartOfDay(s.now())
	filter := func(tx *gorm.DB) *gorm.DB {
		switch status {
		case "", "all":
			return tx
		case string(models.InvoiceStatusOverdue):
			return tx.Where("status = ? OR (status = ? AND due_date < ?)",
				models.InvoiceStatusOverdue, models.InvoiceStatusSent, today)
		default:
			return tx.Where("status = ?", status)
		}
	}

	var total int64
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Scopes(s.visibleTo(viewer), filter).
		Count(&total).Error
	if err != nil {
		return nil, err
	}
	invoices := []models.Invoice{}
	err = s.db.WithContext(ctx).
		Scopes(s.visibleTo(viewer), filter, withDetails).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Summarize(today)
	}
	return &InvoicePage{Invoices: invoices, Total: total, Page: page, TotalPages: totalPages(total, limit)}, nil
}

func withDetails(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_date ASC").Order("id ASC") })
}

// Get loads an invoice with customer, items and payments. Visibility is
// checked by the caller against the loaded customer.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Scopes(withDetails).First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Invoice")
		}
		return nil, err
	}
	inv.Summarize(s.now())
	return &inv, nil
}

// UpdateStatus is the manual transition used by administrators. Any valid
// status may be set; the ledger's move to paid is the only automatic one.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uint, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		return nil, invalid("Invalid status", validation.Violations{"status": "invalid_choice"})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Invoice")
			}
			return err
		}
		if inv.Status == status {
			return nil
		}
		return tx.Model(&inv).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Stats aggregates the invoices visible to viewer. Pending is the unpaid
// balance of invoices that are neither paid nor cancelled.
func (s *InvoiceService) Stats(ctx context.Context, viewer Viewer) (*BillingStats, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Scopes(s.visibleTo(viewer)).
		Preload("Payments").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	today := s.now()
	st := &BillingStats{TotalAmount: decimal.Zero, PendingAmount: decimal.Zero, PaidAmount: decimal.Zero}
	for i := range invoices {
		inv := &invoices[i]
		inv.Summarize(today)
		st.TotalInvoices++
		st.TotalAmount = st.TotalAmount.Add(inv.TotalAmount)
		st.PaidAmount = st.PaidAmount.Add(inv.AmountPaid)
		if inv.Status == models.InvoiceStatusPaid {
			st.PaidInvoices++
		}
		if inv.IsOverdue {
			st.OverdueInvoices++
		}
		if inv.Status != models.InvoiceStatusPaid && inv.Status != models.InvoiceStatusCancelled && inv.BalanceDue.IsPositive() {
			st.PendingAmount = st.PendingAmount.Add(inv.BalanceDue)
		}
	}
	return st, nil
}
