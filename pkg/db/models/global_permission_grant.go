package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// GlobalPermissionGrant records a baseline permission held by a system role
// independent of any group, for example "access checkout".
type GlobalPermissionGrant struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Role       enums.SystemRole `gorm:"column:role;type:text;not null;index:idx_global_permission_grants_lookup"`
	Permission string           `gorm:"column:permission;not null;index:idx_global_permission_grants_lookup"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
