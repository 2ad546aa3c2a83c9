package models

import (
	"time"

	"github.com/google/uuid"
)

// Group is a collection entity that orders and users can be associated with.
// All group-scoped authorization is evaluated against it.
type Group struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Kind      string    `gorm:"column:kind;not null;default:'organization'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
