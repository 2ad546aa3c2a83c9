package access

import (
	"fmt"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// ObjectNoun is the trailing token of a group permission name. Cart
// permissions end in "cart", order-level permissions such as checkout end in
// "entity".
type ObjectNoun string

const (
	NounCart   ObjectNoun = "cart"
	NounEntity ObjectNoun = "entity"
)

// Permission is the typed form of a group permission name. It is never
// stored; grants in the policy store are matched against its single
// serialization, so construction and lookup cannot drift apart.
type Permission struct {
	Operation enums.Operation
	Scope     enums.PermissionScope
	PluginID  string
	Object    ObjectNoun
}

// NewPermission builds a permission value for the given operation, scope,
// role plugin and object noun.
func NewPermission(op enums.Operation, scope enums.PermissionScope, pluginID string, object ObjectNoun) Permission {
	return Permission{
		Operation: op,
		Scope:     scope,
		PluginID:  pluginID,
		Object:    object,
	}
}

// String renders the permission in the wire format consumed by the policy
// store: "<operation> <scope> <plugin-id> <object>", for example
// "update own group_commerce_order:default cart".
func (p Permission) String() string {
	return fmt.Sprintf("%s %s %s %s", p.Operation, p.Scope, p.PluginID, p.Object)
}

// Baseline permissions granted site-wide per system role, independent of any
// group.
const (
	PermissionAccessCheckout = "access checkout"

	PermissionViewAnySplitItem   = "view any split item"
	PermissionViewOwnSplitItem   = "view own split item"
	PermissionUpdateAnySplitItem = "update any split item"
	PermissionUpdateOwnSplitItem = "update own split item"
	PermissionDeleteAnySplitItem = "delete any split item"
	PermissionDeleteOwnSplitItem = "delete own split item"
)

// SplitItemPermission returns the baseline split item permission name for the
// given operation and scope.
func SplitItemPermission(op enums.Operation, scope enums.PermissionScope) string {
	return fmt.Sprintf("%s %s split item", op, scope)
}
