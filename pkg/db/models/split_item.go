package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitItem allocates part of a line item's quantity to one customer. The
// price column is always derived from quantity and the parent line item's
// unit price; it is never set independently.
type SplitItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LineItemID uuid.UUID       `gorm:"column:line_item_id;type:uuid;not null;index"`
	CustomerID uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null;default:1"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
