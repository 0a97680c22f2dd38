package handlers

import (
	"net/http"

	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	svc  *services.CustomerService
	gate *policy.AuthGate
	log  *zap.Logger
}

func NewCustomerHandler(svc *services.CustomerService, ag *policy.AuthGate, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, gate: ag, log: log}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.List(r.Context(), viewerOf(r.Context(), h.gate))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"customer": c})
}
