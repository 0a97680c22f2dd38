package handlers

import (
	"net/http"

	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"go.uber.org/zap"
)

// AdminUserHandler lists users and assigns roles.
type AdminUserHandler struct {
	users *services.UserService
	gate  *policy.AuthGate
	log   *zap.Logger
}

func NewAdminUserHandler(users *services.UserService, ag *policy.AuthGate, log *zap.Logger) *AdminUserHandler {
	return &AdminUserHandler{users: users, gate: ag, log: log}
}

func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

// UpdateRole changes a user's role and drops their cached permissions.
func (h *AdminUserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	actor := currentUser(r.Context())
	u, err := h.users.UpdateRole(r.Context(), actor, id, req.Role)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.gate.InvalidateUser(id)
	h.log.Info("role updated", zap.Uint("actor_id", actor), zap.Uint("user_id", id), zap.String("role", string(u.Role)))
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}
