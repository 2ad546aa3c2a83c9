package enums

import "fmt"

// GroupRole represents the role a principal holds within a group. The
// anonymous and outsider roles are synthetic: they are assumed for principals
// without a membership rather than stored on one.
type GroupRole string

const (
	GroupRoleAnonymous GroupRole = "anonymous"
	GroupRoleOutsider  GroupRole = "outsider"
	GroupRoleMember    GroupRole = "member"
	GroupRoleManager   GroupRole = "manager"
	GroupRoleAdmin     GroupRole = "admin"
)

var validGroupRoles = []GroupRole{
	GroupRoleAnonymous,
	GroupRoleOutsider,
	GroupRoleMember,
	GroupRoleManager,
	GroupRoleAdmin,
}

// String implements fmt.Stringer.
func (g GroupRole) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroupRole.
func (g GroupRole) IsValid() bool {
	for _, candidate := range validGroupRoles {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsSynthetic reports whether the role is assumed rather than granted through
// a membership record.
func (g GroupRole) IsSynthetic() bool {
	return g == GroupRoleAnonymous || g == GroupRoleOutsider
}

// ParseGroupRole converts raw input into a GroupRole.
func ParseGroupRole(value string) (GroupRole, error) {
	for _, candidate := range validGroupRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group role %q", value)
}
