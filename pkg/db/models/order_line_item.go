package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem captures the snapshot of each purchased item within an order.
// Prices are fixed-point decimals in the order's currency.
type OrderLineItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Title      string          `gorm:"column:title;not null"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(14,6);not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null"`
	SplitItems []SplitItem     `gorm:"foreignKey:LineItemID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
