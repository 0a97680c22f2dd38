package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/gate"
	"github.com/diewo77/go-inventory/httpx"
	"github.com/diewo77/go-inventory/internal/models"
	"github.com/diewo77/go-inventory/internal/policy"
	"github.com/diewo77/go-inventory/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Sessions
	gate     *policy.AuthGate
	log      *zap.Logger
}

func NewAuthHandler(users *services.UserService, sessions *auth.Sessions, ag *policy.AuthGate, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, gate: ag, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	u, err := h.users.Signup(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.sessions.Create(w, u.ID)
	h.log.Info("user signed up", zap.Uint("user_id", u.ID))
	httpx.JSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, msgInvalidBody, nil)
		return
	}
	if in.Email == "" || in.Password == "" {
		httpx.JSONError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}
	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			httpx.JSONError(w, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		writeError(w, h.log, err)
		return
	}
	h.sessions.Create(w, u.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.sessions.Clear(w)
	httpx.JSON(w, http.StatusOK, httpx.MessageResponse{Message: "Logged out"})
}

type profileResponse struct {
	User           *models.User `json:"user"`
	Permissions    []string     `json:"permissions"`
	CanManageUsers bool         `json:"can_manage_users"`
}

// Profile returns the current user with the permissions of their role.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), currentUser(r.Context()))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	resp := profileResponse{
		User:           u,
		Permissions:    []string{},
		CanManageUsers: h.gate.Can(r.Context(), gate.ActionManage, policy.ResourceUser),
	}
	if p := policy.ProfileForRole(u.Role); p != nil {
		for _, perm := range p.Permissions() {
			resp.Permissions = append(resp.Permissions, string(perm))
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
