package enums

import "fmt"

// PermissionScope distinguishes permissions that apply only to resources the
// principal owns from permissions that apply to all resources. The two scopes
// are mutually exclusive: an `any` grant makes ownership irrelevant.
type PermissionScope string

const (
	ScopeOwn PermissionScope = "own"
	ScopeAny PermissionScope = "any"
)

var validPermissionScopes = []PermissionScope{
	ScopeOwn,
	ScopeAny,
}

// String implements fmt.Stringer.
func (s PermissionScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PermissionScope.
func (s PermissionScope) IsValid() bool {
	for _, candidate := range validPermissionScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePermissionScope converts raw input into a PermissionScope.
func ParsePermissionScope(value string) (PermissionScope, error) {
	for _, candidate := range validPermissionScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission scope %q", value)
}
