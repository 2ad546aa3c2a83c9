package carts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

type lineItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	Title      string          `json:"title"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type orderResponse struct {
	ID         uuid.UUID          `json:"id"`
	CustomerID *uuid.UUID         `json:"customer_id,omitempty"`
	Bundle     string             `json:"bundle"`
	State      enums.OrderState   `json:"state"`
	IsCart     bool               `json:"is_cart"`
	Currency   enums.Currency     `json:"currency"`
	Total      decimal.Decimal    `json:"total"`
	Items      []lineItemResponse `json:"items"`
	PlacedAt   *time.Time         `json:"placed_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

type orderListResponse struct {
	Orders     []orderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type checkoutAccessResponse struct {
	Allowed bool `json:"allowed"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, lineItemResponse{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return orderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Bundle:     order.Bundle,
		State:      order.State,
		IsCart:     order.IsCart,
		Currency:   order.Currency,
		Total:      order.Total,
		Items:      items,
		PlacedAt:   order.PlacedAt,
		CreatedAt:  order.CreatedAt,
	}
}
