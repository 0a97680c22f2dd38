package gate

import (
	"context"
	"sort"
)

// Profile is the set of permissions a subject holds.
type Profile interface {
	Name() string
	Can(p Permission) bool
	Permissions() []Permission
}

// ProfileResolver maps a subject to its profile. A nil profile with a nil
// error means the subject holds no permissions.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, subject U) (Profile, error)
}

// ResolverFunc adapts a function to ProfileResolver.
type ResolverFunc[U any] func(ctx context.Context, subject U) (Profile, error)

func (f ResolverFunc[U]) Resolve(ctx context.Context, subject U) (Profile, error) {
	return f(ctx, subject)
}

// RoleProfile is a fixed, named permission set.
type RoleProfile struct {
	name  string
	perms map[Permission]struct{}
}

// NewRoleProfile builds a RoleProfile holding perms.
func NewRoleProfile(name string, perms ...Permission) *RoleProfile {
	rp := &RoleProfile{name: name, perms: make(map[Permission]struct{}, len(perms))}
	for _, p := range perms {
		rp.perms[p] = struct{}{}
	}
	return rp
}

func (rp *RoleProfile) Name() string { return rp.name }

// Can reports whether any held permission grants p.
func (rp *RoleProfile) Can(p Permission) bool {
	if _, ok := rp.perms[p]; ok {
		return true
	}
	for held := range rp.perms {
		if held.Grants(p) {
			return true
		}
	}
	return false
}

// Permissions returns the held permissions in lexical order.
func (rp *RoleProfile) Permissions() []Permission {
	out := make([]Permission, 0, len(rp.perms))
	for p := range rp.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
