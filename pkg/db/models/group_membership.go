package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// GroupMembership links a user with a group and captures their role/status.
// A user may hold several roles in the same group through multiple rows.
type GroupMembership struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID              `gorm:"column:group_id;type:uuid;not null;index:idx_group_memberships_group_user"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:idx_group_memberships_group_user"`
	Role      enums.GroupRole        `gorm:"column:role;type:text;not null;default:'member'"`
	Status    enums.MembershipStatus `gorm:"column:status;type:text;not null;default:'active'"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
