package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// GroupPermissionGrant records that a role holds a permission within a group.
// The permission column stores the serialized permission name, for example
// "update own group_commerce_order:default cart".
type GroupPermissionGrant struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID    uuid.UUID       `gorm:"column:group_id;type:uuid;not null;index:idx_group_permission_grants_lookup"`
	Role       enums.GroupRole `gorm:"column:role;type:text;not null;index:idx_group_permission_grants_lookup"`
	Permission string          `gorm:"column:permission;not null;index:idx_group_permission_grants_lookup"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
