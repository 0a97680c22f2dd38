// Package policy wires the gate package to users stored in the database:
// roles map to fixed permission sets and invoices are guarded by ownership.
package policy

import (
	"context"
	"errors"

	"github.com/diewo77/go-inventory/gate"
	"github.com/diewo77/go-inventory/internal/models"
	"gorm.io/gorm"
)

// Resource names used in permissions.
const (
	ResourceInventory    = "inventory"
	ResourceCustomer     = "customer"
	ResourceInvoice      = "invoice"
	ResourcePayment      = "payment"
	ResourceBillingStats = "billing_stats"
	ResourceUser         = "user"
)

var (
	AdminProfile = gate.NewRoleProfile(string(models.RoleAdmin), gate.PermissionAll)
	UserProfile  = gate.NewRoleProfile(string(models.RoleUser),
		gate.NewPermission(ResourceInventory, gate.ActionList),
		gate.NewPermission(ResourceInventory, gate.ActionView),
		gate.NewPermission(ResourceInvoice, gate.ActionList),
		gate.NewPermission(ResourceInvoice, gate.ActionView),
		gate.NewPermission(ResourcePayment, gate.ActionList),
		gate.NewPermission(ResourceCustomer, gate.ActionList),
		gate.NewPermission(ResourceBillingStats, gate.ActionView),
	)
)

// ProfileForRole returns the permission set of role, or nil for an unknown role.
func ProfileForRole(role models.Role) gate.Profile {
	switch role {
	case models.RoleAdmin:
		return AdminProfile
	case models.RoleUser:
		return UserProfile
	}
	return nil
}

// RoleResolver looks up the role of a user on every call.
type RoleResolver struct {
	db *gorm.DB
}

func NewRoleResolver(db *gorm.DB) *RoleResolver {
	return &RoleResolver{db: db}
}

// Resolve returns a nil profile for unknown or deleted users.
func (r *RoleResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var u models.User
	err := r.db.WithContext(ctx).Select("id", "role").First(&u, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ProfileForRole(u.Role), nil
}
