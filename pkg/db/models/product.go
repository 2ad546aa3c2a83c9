package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// Product is a sellable catalog entry. The bundle selects the group relation
// plugin used when the product is placed into a group.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Bundle    string          `gorm:"column:bundle;not null;default:'default'"`
	Title     string          `gorm:"column:title;not null"`
	SKU       string          `gorm:"column:sku;not null;uniqueIndex"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(14,6);not null;default:0"`
	Currency  enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
