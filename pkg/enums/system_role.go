package enums

import "fmt"

// SystemRole is a site-wide role assigned to a user account, independent of
// any group. Baseline permissions such as `access checkout` are granted per
// system role.
type SystemRole string

const (
	SystemRoleAnonymous     SystemRole = "anonymous"
	SystemRoleCustomer      SystemRole = "customer"
	SystemRoleStoreManager  SystemRole = "store_manager"
	SystemRoleAdministrator SystemRole = "administrator"
)

var validSystemRoles = []SystemRole{
	SystemRoleAnonymous,
	SystemRoleCustomer,
	SystemRoleStoreManager,
	SystemRoleAdministrator,
}

// String implements fmt.Stringer.
func (r SystemRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known SystemRole.
func (r SystemRole) IsValid() bool {
	for _, candidate := range validSystemRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseSystemRole converts raw input into a SystemRole.
func ParseSystemRole(value string) (SystemRole, error) {
	for _, candidate := range validSystemRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid system role %q", value)
}
