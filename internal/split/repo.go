package split

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
)

// SplitRepository exposes persistence operations for split items.
type SplitRepository interface {
	WithTx(tx *gorm.DB) SplitRepository
	Create(ctx context.Context, item *models.SplitItem) (*models.SplitItem, error)
	Save(ctx context.Context, item *models.SplitItem) (*models.SplitItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SplitItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByLineItem(ctx context.Context, lineItemID uuid.UUID) ([]models.SplitItem, error)
}

// Repository is the gorm-backed SplitRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a split item repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) SplitRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new split item.
func (r *Repository) Create(ctx context.Context, item *models.SplitItem) (*models.SplitItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Save persists the provided split item.
func (r *Repository) Save(ctx context.Context, item *models.SplitItem) (*models.SplitItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID loads a split item.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SplitItem, error) {
	var item models.SplitItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes a split item.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.SplitItem{}).Error
}

// ListByLineItem returns the split items attached to a line item, oldest
// first.
func (r *Repository) ListByLineItem(ctx context.Context, lineItemID uuid.UUID) ([]models.SplitItem, error) {
	var rows []models.SplitItem
	err := r.db.WithContext(ctx).
		Where("line_item_id = ?", lineItemID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
