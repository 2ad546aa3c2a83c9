package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type contextResolver interface {
	CurrentGroupID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
}

type orderAssociator interface {
	AssociateOrder(ctx context.Context, groupID uuid.UUID, order *models.Order) (*models.GroupContent, error)
}

// SplitMaintainer receives line item lifecycle hooks so dependent split
// items stay priced and cleaned up.
type SplitMaintainer interface {
	RepairLineItem(ctx context.Context, lineItemID uuid.UUID) error
	DeleteForLineItem(ctx context.Context, lineItemID uuid.UUID) error
}

// Service exposes order and line item operations.
type Service interface {
	CreateCart(ctx context.Context, principal access.Principal, input CreateCartInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListCarts(ctx context.Context, principal access.Principal) ([]models.Order, error)
	SaveLineItem(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error)
	DeleteLineItem(ctx context.Context, lineItemID uuid.UUID) error
	PlaceOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) error
	SetSplitMaintainer(splits SplitMaintainer)
}

type service struct {
	repo     OrderRepository
	tx       txRunner
	contexts contextResolver
	groups   orderAssociator
	splits   SplitMaintainer
}

// NewService builds an order service backed by the provided stack. The split
// maintainer is optional until wired; the rest is required.
func NewService(repo OrderRepository, tx txRunner, contexts contextResolver, groups orderAssociator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if contexts == nil {
		return nil, fmt.Errorf("context resolver required")
	}
	if groups == nil {
		return nil, fmt.Errorf("group associator required")
	}
	return &service{repo: repo, tx: tx, contexts: contexts, groups: groups}, nil
}

// SetSplitMaintainer wires the split item maintenance hooks. Split items and
// orders depend on each other at runtime, so the link is established after
// both services exist.
func (s *service) SetSplitMaintainer(splits SplitMaintainer) {
	s.splits = splits
}

// CreateCartInput captures the payload for a new cart order.
type CreateCartInput struct {
	Bundle   string
	Currency enums.Currency
}

// LineItemInput captures the payload for creating or updating a line item.
type LineItemInput struct {
	ID        *uuid.UUID
	OrderID   uuid.UUID
	Title     string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CreateCart creates a draft cart for the principal. Carts created while the
// customer has an active shopping context are associated to the context
// group in the same transaction.
func (s *service) CreateCart(ctx context.Context, principal access.Principal, input CreateCartInput) (*models.Order, error) {
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", currency))
	}

	order := &models.Order{
		Bundle:   input.Bundle,
		State:    enums.OrderStateDraft,
		IsCart:   true,
		Currency: currency,
		Total:    decimal.Zero,
	}
	if principal.Authenticated {
		customerID := principal.ID
		order.CustomerID = &customerID
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
		order = created

		if !principal.Authenticated {
			return nil
		}
		groupID, err := s.contexts.CurrentGroupID(ctx, principal.ID)
		if err != nil {
			return err
		}
		if groupID == nil {
			return nil
		}
		if _, err := s.groups.AssociateOrder(ctx, *groupID, order); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder loads an order with its line items.
func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ListCarts returns the carts visible to the principal. With an active
// shopping context the listing switches from personally owned carts to carts
// associated to the context group.
func (s *service) ListCarts(ctx context.Context, principal access.Principal) ([]models.Order, error) {
	if !principal.Authenticated {
		return s.listSessionCarts(ctx, principal)
	}

	groupID, err := s.contexts.CurrentGroupID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if groupID != nil {
		rows, err := s.repo.ListCartsByGroup(ctx, *groupID, principal.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group carts")
		}
		return rows, nil
	}

	rows, err := s.repo.ListCartsByCustomer(ctx, principal.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list carts")
	}
	return rows, nil
}

func (s *service) listSessionCarts(ctx context.Context, principal access.Principal) ([]models.Order, error) {
	var rows []models.Order
	for _, id := range principal.ActiveCartIDs {
		order, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
		}
		if order.IsCart {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

// SaveLineItem creates or updates a line item, recomputes its total, and
// repairs any split items still pointing at a previous parent.
func (s *service) SaveLineItem(ctx context.Context, input LineItemInput) (*models.OrderLineItem, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	order, err := s.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.State == enums.OrderStateCanceled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "canceled orders cannot be modified")
	}

	item := &models.OrderLineItem{
		OrderID:   input.OrderID,
		Title:     input.Title,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
	}
	if input.ID != nil {
		item.ID = *input.ID
	}
	item.TotalPrice = input.Quantity.Mul(input.UnitPrice).Round(order.Currency.Exponent())

	saved, err := s.repo.SaveLineItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save line item")
	}

	if s.splits != nil {
		if err := s.splits.RepairLineItem(ctx, saved.ID); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

// DeleteLineItem removes a line item and its split items.
func (s *service) DeleteLineItem(ctx context.Context, lineItemID uuid.UUID) error {
	if lineItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	if s.splits != nil {
		if err := s.splits.DeleteForLineItem(ctx, lineItemID); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteLineItem(ctx, lineItemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete line item")
	}
	return nil
}

// PlaceOrder finalizes a cart: the order must hold at least one line item and
// must not be in a terminal state.
func (s *service) PlaceOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.State.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s", order.State))
	}
	if !order.HasItems() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no line items")
	}

	now := time.Now().UTC()
	order.State = enums.OrderStateCompleted
	order.IsCart = false
	order.PlacedAt = &now

	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}
	return saved, nil
}

// CancelOrder cancels the order. Canceling is idempotent.
func (s *service) CancelOrder(ctx context.Context, id uuid.UUID) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.State == enums.OrderStateCanceled {
		return nil
	}
	if err := s.repo.UpdateState(ctx, id, enums.OrderStateCanceled); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return nil
}
