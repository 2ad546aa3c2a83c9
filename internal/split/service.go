package split

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

type orderStore interface {
	FindLineItem(ctx context.Context, id uuid.UUID) (*models.OrderLineItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Service manages split item allocation. A split item's price is always
// derived from its quantity and the parent line item's unit price, rounded at
// the order currency's precision.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.SplitItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SplitItem, error)
	SetQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*models.SplitItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AttachToLineItem(ctx context.Context, id, lineItemID uuid.UUID) (*models.SplitItem, error)
	RepairLineItem(ctx context.Context, lineItemID uuid.UUID) error
	DeleteForLineItem(ctx context.Context, lineItemID uuid.UUID) error
	AllocatedQuantity(ctx context.Context, lineItemID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo   SplitRepository
	orders orderStore
}

// NewService builds a split item service.
func NewService(repo SplitRepository, orders orderStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("split repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	return &service{repo: repo, orders: orders}, nil
}

// CreateInput captures the payload for a new split item.
type CreateInput struct {
	LineItemID uuid.UUID
	CustomerID uuid.UUID
	Quantity   decimal.Decimal
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.SplitItem, error) {
	if input.LineItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	lineItem, currency, err := s.loadParent(ctx, input.LineItemID)
	if err != nil {
		return nil, err
	}

	item := &models.SplitItem{
		LineItemID: input.LineItemID,
		CustomerID: input.CustomerID,
		Quantity:   input.Quantity,
		Price:      derivePrice(input.Quantity, lineItem.UnitPrice, currency.Exponent()),
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create split item")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.SplitItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "split item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load split item")
	}
	return item, nil
}

// SetQuantity updates the allocation and rederives the price. Setting the
// same quantity twice leaves the split item unchanged.
func (s *service) SetQuantity(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) (*models.SplitItem, error) {
	if quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lineItem, currency, err := s.loadParent(ctx, item.LineItemID)
	if err != nil {
		return nil, err
	}

	price := derivePrice(quantity, lineItem.UnitPrice, currency.Exponent())
	if item.Quantity.Equal(quantity) && item.Price.Equal(price) {
		return item, nil
	}

	item.Quantity = quantity
	item.Price = price
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save split item")
	}
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "split item id is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete split item")
	}
	return nil
}

// AttachToLineItem points the split item at a new parent line item and
// rederives its price from the new parent.
func (s *service) AttachToLineItem(ctx context.Context, id, lineItemID uuid.UUID) (*models.SplitItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.LineItemID == lineItemID {
		return item, nil
	}

	lineItem, currency, err := s.loadParent(ctx, lineItemID)
	if err != nil {
		return nil, err
	}

	item.LineItemID = lineItemID
	item.Price = derivePrice(item.Quantity, lineItem.UnitPrice, currency.Exponent())
	saved, err := s.repo.Save(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reattach split item")
	}
	return saved, nil
}

// RepairLineItem is invoked after a line item is saved. It rederives the
// price of every attached split item so unit price changes on the parent
// propagate. Splits whose price already matches are left untouched.
func (s *service) RepairLineItem(ctx context.Context, lineItemID uuid.UUID) error {
	lineItem, currency, err := s.loadParent(ctx, lineItemID)
	if err != nil {
		return err
	}

	splits, err := s.repo.ListByLineItem(ctx, lineItemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list split items")
	}

	for i := range splits {
		item := &splits[i]
		price := derivePrice(item.Quantity, lineItem.UnitPrice, currency.Exponent())
		if item.Price.Equal(price) {
			continue
		}
		item.Price = price
		if _, err := s.repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "repair split item")
		}
	}
	return nil
}

// DeleteForLineItem removes every split item attached to the line item. All
// deletions are attempted; failures are aggregated.
func (s *service) DeleteForLineItem(ctx context.Context, lineItemID uuid.UUID) error {
	splits, err := s.repo.ListByLineItem(ctx, lineItemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list split items")
	}

	var errs error
	for _, item := range splits {
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "delete split items")
	}
	return nil
}

// AllocatedQuantity returns the sum of the line item's split quantities.
// Splits are not forced to cover the parent quantity; callers compare
// against the line item themselves when they care.
func (s *service) AllocatedQuantity(ctx context.Context, lineItemID uuid.UUID) (decimal.Decimal, error) {
	splits, err := s.repo.ListByLineItem(ctx, lineItemID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list split items")
	}
	total := decimal.Zero
	for _, item := range splits {
		total = total.Add(item.Quantity)
	}
	return total, nil
}

func (s *service) loadParent(ctx context.Context, lineItemID uuid.UUID) (*models.OrderLineItem, enums.Currency, error) {
	lineItem, err := s.orders.FindLineItem(ctx, lineItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line item")
	}
	order, err := s.orders.FindByID(ctx, lineItem.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return lineItem, order.Currency, nil
}

func derivePrice(quantity, unitPrice decimal.Decimal, exponent int32) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(exponent)
}
