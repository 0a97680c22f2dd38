package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/services"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	svc *services.InventoryService
	log *zap.Logger
}

func NewInventoryHandler(svc *services.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, log: log}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), services.InventoryQuery{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Page:     httpx.QueryInt(r, "page", 1),
		Limit:    httpx.QueryInt(r, "limit", services.DefaultLimit),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.InventoryInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	item, err := h.svc.Create(r.Context(), in, currentUser(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.InventoryInput
	if err := httpx.DecodeJSON(r, &in); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	item, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, httpx.MessageResponse{Message: "Item deleted successfully"})
}

func (h *InventoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}

func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}
