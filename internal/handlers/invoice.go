package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-inventory/gate"
	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/ledger"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	svc    *services.InvoiceService
	ledger *ledger.Ledger
	gate   *policy.AuthGate
	log    *zap.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, l *ledger.Ledger, ag *policy.AuthGate, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, ledger: l, gate: ag, log: log}
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), viewerOf(r.Context(), h.gate), services.InvoiceQuery{
		Status: r.URL.Query().Get("status"),
		Page:   httpx.QueryInt(r, "page", 1),
		Limit:  httpx.QueryInt(r, "limit", services.DefaultLimit),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Get answers 403 for an invoice of another customer.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.gate.Authorize(r.Context(), gate.ActionView, policy.ResourceInvoice, inv); err != nil {
		policy.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

// Balance reports what has been paid against an invoice and what is still due.
func (h *InvoiceHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := h.gate.Authorize(r.Context(), gate.ActionView, policy.ResourceInvoice, inv); err != nil {
		policy.WriteError(w, err)
		return
	}
	sum, err := h.ledger.Balance(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrInvoiceNotFound):
		httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	default:
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balance": sum})
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.InvoiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	inv, err := h.svc.Create(r.Context(), in, currentUser(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"invoice": inv})
}

type statusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	inv, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), viewerOf(r.Context(), h.gate))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}
