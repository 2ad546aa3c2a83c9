package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupProductContent associates a product with a group through a role
// plugin, e.g. "group_commerce_product:default". Like order associations,
// rows are evaluated in insertion order.
type GroupProductContent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	PluginID  string    `gorm:"column:plugin_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
