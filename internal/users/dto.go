package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                    uuid.UUID        `json:"id"`
	Email                 string           `json:"email"`
	DisplayName           string           `json:"display_name"`
	SystemRole            enums.SystemRole `json:"system_role"`
	IsActive              bool             `json:"is_active"`
	LastLoginAt           *time.Time       `json:"last_login_at,omitempty"`
	DefaultContextGroupID *uuid.UUID       `json:"default_context_group_id,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	DisplayName  string
	SystemRole   enums.SystemRole
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:                    u.ID,
		Email:                 u.Email,
		DisplayName:           u.DisplayName,
		SystemRole:            u.SystemRole,
		IsActive:              u.IsActive,
		LastLoginAt:           u.LastLoginAt,
		DefaultContextGroupID: u.DefaultContextGroupID,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	role := c.SystemRole
	if role == "" {
		role = enums.SystemRoleCustomer
	}

	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		DisplayName:  c.DisplayName,
		SystemRole:   role,
		IsActive:     isActive,
	}
}
