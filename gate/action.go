package gate

// Action is the verb half of a permission ("inventory:create").
type Action string

const (
	ActionList   Action = "list"
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionManage covers state changes that are neither plain edits nor
	// deletes, such as a manual invoice status transition.
	ActionManage Action = "manage"
)
