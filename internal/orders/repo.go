package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// OrderRepository exposes persistence operations for orders and line items.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateState(ctx context.Context, id uuid.UUID, state enums.OrderState) error
	ListCartsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	ListCartsByGroup(ctx context.Context, groupID, memberID uuid.UUID) ([]models.Order, error)
	SaveLineItem(ctx context.Context, item *models.OrderLineItem) (*models.OrderLineItem, error)
	FindLineItem(ctx context.Context, id uuid.UUID) (*models.OrderLineItem, error)
	DeleteLineItem(ctx context.Context, id uuid.UUID) error
}

// Repository is the gorm-backed OrderRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.State == "" {
		order.State = enums.OrderStateDraft
	}
	if order.Bundle == "" {
		order.Bundle = "default"
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Save persists the provided order.
func (r *Repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its line items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Delete removes the order. Line items and split items cascade through the
// schema's foreign keys.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{}).Error
}

// UpdateState updates the order state.
func (r *Repository) UpdateState(ctx context.Context, id uuid.UUID, state enums.OrderState) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("state", state).Error
}

// ListCartsByCustomer returns the customer's in-progress carts, newest first.
func (r *Repository) ListCartsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ? AND is_cart = ?", customerID, true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCartsByGroup returns carts associated to the group, restricted to
// groups where the member holds an active membership.
func (r *Repository) ListCartsByGroup(ctx context.Context, groupID, memberID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Joins("JOIN group_contents ON group_contents.order_id = orders.id").
		Joins("JOIN group_memberships ON group_memberships.group_id = group_contents.group_id").
		Where("group_contents.group_id = ?", groupID).
		Where("group_memberships.user_id = ? AND group_memberships.status = ?", memberID, enums.MembershipStatusActive).
		Where("orders.is_cart = ?", true).
		Order("orders.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveLineItem persists a line item, creating it when new.
func (r *Repository) SaveLineItem(ctx context.Context, item *models.OrderLineItem) (*models.OrderLineItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindLineItem loads a line item with its split items.
func (r *Repository) FindLineItem(ctx context.Context, id uuid.UUID) (*models.OrderLineItem, error) {
	var item models.OrderLineItem
	err := r.db.WithContext(ctx).
		Preload("SplitItems").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteLineItem removes a line item. Split items cascade through the schema.
func (r *Repository) DeleteLineItem(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.OrderLineItem{}).Error
}
