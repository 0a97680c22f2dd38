package gate

import "context"

// Policy decides whether subject may perform action on a loaded resource.
// Policies only run after the profile check has passed.
type Policy[U any] interface {
	Allow(ctx context.Context, subject U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, subject U, action Action, resource any) bool

func (f PolicyFunc[U]) Allow(ctx context.Context, subject U, action Action, resource any) bool {
	return f(ctx, subject, action, resource)
}
