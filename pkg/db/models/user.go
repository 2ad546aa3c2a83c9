package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	DisplayName  string           `gorm:"column:display_name;not null"`
	SystemRole   enums.SystemRole `gorm:"column:system_role;type:text;not null;default:'customer'"`
	IsActive     bool             `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`

	// DefaultContextGroupID stores the user's default shopping context. When
	// the remember-last-context preference is on, it doubles as the last
	// selected context.
	DefaultContextGroupID *uuid.UUID `gorm:"column:default_context_group_id;type:uuid"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
