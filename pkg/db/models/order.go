package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// Order represents a customer order. While IsCart is true the order is an
// in-progress cart; completed and canceled orders keep the flag false.
// CustomerID is null for carts created in anonymous sessions.
type Order struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID *uuid.UUID       `gorm:"column:customer_id;type:uuid;index"`
	Bundle     string           `gorm:"column:bundle;not null;default:'default'"`
	State      enums.OrderState `gorm:"column:state;type:text;not null;default:'draft'"`
	IsCart     bool             `gorm:"column:is_cart;not null;default:false"`
	Currency   enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	Total      decimal.Decimal  `gorm:"column:total;type:numeric(14,2);not null;default:0"`
	Items      []OrderLineItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt   *time.Time       `gorm:"column:placed_at"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// HasItems reports whether the order carries at least one line item. Callers
// must have preloaded Items.
func (o *Order) HasItems() bool {
	return o != nil && len(o.Items) > 0
}
