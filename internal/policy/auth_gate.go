package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-inventory/auth"
	"github.com/diewo77/go-inventory/gate"
	"github.com/diewo77/go-inventory/httpx"
	"gorm.io/gorm"
)

// AuthGate is the single authorization point of the HTTP layer.
type AuthGate struct {
	Gate  *gate.Gate[uint]
	cache *gate.CachedResolver[uint]
}

// NewAuthGate resolves roles from db, caches them for cacheTTL and guards
// invoices with ownership plus admin bypass.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cache := gate.NewCachedResolver[uint](NewRoleResolver(db), cacheTTL)
	ag := &AuthGate{Gate: gate.New[uint](cache), cache: cache}
	ag.Gate.Register(ResourceInvoice, NewAdminBypassPolicy(NewOwnershipPolicy(), ag.IsAdmin))
	return ag
}

// IsAdmin reports whether userID holds every permission.
func (ag *AuthGate) IsAdmin(ctx context.Context, userID uint) bool {
	if userID == 0 {
		return false
	}
	p, err := ag.Gate.Profile(ctx, userID)
	return err == nil && p != nil && p.Can(gate.PermissionAll)
}

// Authorize checks the caller in ctx against resource:action and, when
// record is non-nil, against the resource policy.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resource string, record any) error {
	userID, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.Authorize(ctx, userID, action, resource, record)
}

// Can reports whether the caller in ctx holds resource:action, without
// consulting resource policies.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resource string) bool {
	userID, _ := auth.UserIDFromContext(ctx)
	return ag.Gate.Allowed(ctx, userID, action, resource)
}

// InvalidateUser forgets the cached profile of userID after a role change.
func (ag *AuthGate) InvalidateUser(userID uint) { ag.cache.Invalidate(userID) }

// WriteError maps gate errors to 401 or 403.
func WriteError(w http.ResponseWriter, err error) {
	if errors.Is(err, gate.ErrUnauthenticated) {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
}

// RequirePermission rejects callers whose profile lacks resource:action.
func (ag *AuthGate) RequirePermission(resource string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resource, nil); err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets holders of "*:*" through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				WriteError(w, gate.ErrUnauthenticated)
				return
			}
			if !ag.IsAdmin(r.Context(), userID) {
				WriteError(w, gate.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
