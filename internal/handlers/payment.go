package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/ledger"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"github.com/diewo77/go-inventory/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const msgPaymentRequired = "Invoice ID and valid amount are required"

type PaymentHandler struct {
	ledger *ledger.Ledger
	svc    *services.PaymentService
	gate   *policy.AuthGate
	log    *zap.Logger
}

func NewPaymentHandler(l *ledger.Ledger, svc *services.PaymentService, ag *policy.AuthGate, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{ledger: l, svc: svc, gate: ag, log: log}
}

type paymentRequest struct {
	InvoiceID       *uint                `json:"invoice_id"`
	Amount          *decimal.Decimal     `json:"amount"`
	PaymentDate     string               `json:"payment_date"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	ReferenceNumber *string              `json:"reference_number"`
	Notes           *string              `json:"notes"`
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	var invoiceID *uint
	if raw := r.URL.Query().Get("invoice_id"); raw != "" {
		id, ok := httpx.PathUint(raw)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "Invalid invoice_id", nil)
			return
		}
		invoiceID = &id
	}
	payments, err := h.svc.List(r.Context(), viewerOf(r.Context(), h.gate), invoiceID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": payments})
}

// Create records a payment and lets the ledger settle the invoice.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgPaymentRequired, nil)
		return
	}
	if req.InvoiceID == nil || *req.InvoiceID == 0 || req.Amount == nil {
		v := validation.Violations{}
		validation.Present("invoice_id", req.InvoiceID, v)
		validation.Present("amount", req.Amount, v)
		if len(v) == 0 {
			v.Add("invoice_id", "required")
		}
		httpx.JSONError(w, http.StatusBadRequest, msgPaymentRequired, v)
		return
	}

	var date time.Time
	if req.PaymentDate != "" {
		d, err := models.ParseDate(req.PaymentDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "Invalid payment_date", validation.Violations{"payment_date": "invalid_date"})
			return
		}
		date = d
	}

	rc, err := h.ledger.RecordPayment(r.Context(), ledger.PaymentInput{
		InvoiceID:       *req.InvoiceID,
		Amount:          *req.Amount,
		PaymentDate:     date,
		Method:          req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		CreatedBy:       currentUser(r.Context()),
	})
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrInvalidMethod):
		httpx.JSONError(w, http.StatusBadRequest, "Invalid payment method", validation.Violations{"payment_method": "invalid_choice"})
		return
	case ledger.IsValidation(err):
		httpx.JSONError(w, http.StatusBadRequest, msgPaymentRequired, nil)
		return
	case errors.Is(err, ledger.ErrInvoiceNotFound):
		httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	default:
		h.log.Error("record payment failed", zap.Uint("invoice_id", *req.InvoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, msgInternal, nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": rc.Payment})
}
