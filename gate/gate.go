// Package gate implements permission checks in two layers: a profile layer
// holding "resource:action" permissions per subject, and optional per-resource
// policies that inspect a concrete record (ownership and similar rules).
//
// The subject type is generic so callers can authorize by user ID, by a
// loaded user struct or by token claims.
package gate

import (
	"context"
	"sync"
)

// Gate combines a ProfileResolver with per-resource policies.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]

	mu       sync.RWMutex
	policies map[string]Policy[U]
}

// New returns a gate resolving profiles through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register attaches a policy to a resource name, replacing any previous one.
func (g *Gate[U]) Register(resource string, p Policy[U]) {
	g.mu.Lock()
	g.policies[resource] = p
	g.mu.Unlock()
}

// Authorize returns ErrUnauthenticated for the zero subject and ErrForbidden
// when the profile lacks resource:action or the resource policy rejects the
// record. A nil record skips the policy.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resource string, record any) error {
	if !g.Allowed(ctx, subject, action, resource) {
		var zero U
		if subject == zero {
			return ErrUnauthenticated
		}
		return ErrForbidden
	}
	if record == nil {
		return nil
	}
	g.mu.RLock()
	p, ok := g.policies[resource]
	g.mu.RUnlock()
	if ok && !p.Allow(ctx, subject, action, record) {
		return ErrForbidden
	}
	return nil
}

// Allowed checks the profile layer only.
func (g *Gate[U]) Allowed(ctx context.Context, subject U, action Action, resource string) bool {
	var zero U
	if subject == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil || profile == nil {
		return false
	}
	return profile.Can(NewPermission(resource, action))
}

// Profile exposes the resolved profile of subject.
func (g *Gate[U]) Profile(ctx context.Context, subject U) (Profile, error) {
	return g.resolver.Resolve(ctx, subject)
}
