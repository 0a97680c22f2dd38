package policy

import (
	"context"

	"github.com/diewo77/go-inventory/gate"
)

// Ownable is implemented by records that belong to a user.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows a subject to act on records it owns. Records that
// are not Ownable are denied.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy { return &OwnershipPolicy{} }

func (p *OwnershipPolicy) Allow(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	o, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return userID != 0 && o.GetUserID() == userID
}

// AdminBypassPolicy lets admins through and defers to inner otherwise.
type AdminBypassPolicy struct {
	inner   gate.Policy[uint]
	isAdmin func(ctx context.Context, userID uint) bool
}

func NewAdminBypassPolicy(inner gate.Policy[uint], isAdmin func(ctx context.Context, userID uint) bool) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner, isAdmin: isAdmin}
}

func (p *AdminBypassPolicy) Allow(ctx context.Context, userID uint, action gate.Action, resource any) bool {
	if p.isAdmin(ctx, userID) {
		return true
	}
	return p.inner.Allow(ctx, userID, action, resource)
}
