package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupContent associates an order with a group through a role plugin. The
// plugin ID names the capability that governs permission name construction,
// e.g. "group_commerce_order:default". An order may belong to several groups;
// rows are evaluated in insertion order.
type GroupContent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	PluginID  string    `gorm:"column:plugin_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
