package gate

import "strings"

// Permission is a "resource:action" pair. Either half may be the wildcard "*".
type Permission string

const (
	Wildcard = "*"
	// PermissionAll grants every action on every resource.
	PermissionAll Permission = "*:*"
)

// NewPermission joins a resource name and an action.
func NewPermission(resource string, action Action) Permission {
	return Permission(resource + ":" + string(action))
}

// Split returns the resource and action halves, or two empty strings when
// the permission is malformed.
func (p Permission) Split() (string, Action) {
	resource, action, ok := strings.Cut(string(p), ":")
	if !ok || resource == "" || action == "" {
		return "", ""
	}
	return resource, Action(action)
}

// Grants reports whether holding p allows the requested permission.
// "*:*" grants everything, "inventory:*" grants every inventory action and
// "*:list" grants listing of every resource.
func (p Permission) Grants(requested Permission) bool {
	if p == PermissionAll || p == requested {
		return true
	}
	res, act := p.Split()
	reqRes, reqAct := requested.Split()
	if res == "" || reqRes == "" {
		return false
	}
	resOK := res == Wildcard || res == reqRes
	actOK := act == Wildcard || act == reqAct
	return resOK && actOK
}
