package groups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// GroupRepository exposes the persistence surface the group service needs.
type GroupRepository interface {
	WithTx(tx *gorm.DB) GroupRepository
	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	FindGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
	CreateMembership(ctx context.Context, membership *models.GroupMembership) (*models.GroupMembership, error)
	ListMemberships(ctx context.Context, groupID, userID uuid.UUID) ([]models.GroupMembership, error)
	IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	CreateGrant(ctx context.Context, grant *models.GroupPermissionGrant) (*models.GroupPermissionGrant, error)
	HasGrant(ctx context.Context, groupID uuid.UUID, roles []enums.GroupRole, permission string) (bool, error)
	CreateGlobalGrant(ctx context.Context, grant *models.GlobalPermissionGrant) (*models.GlobalPermissionGrant, error)
	HasGlobalGrant(ctx context.Context, role enums.SystemRole, permission string) (bool, error)
	CreateAssociation(ctx context.Context, content *models.GroupContent) (*models.GroupContent, error)
	ListAssociationsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.GroupContent, error)
	DeleteAssociationsByOrder(ctx context.Context, orderID uuid.UUID) error
	CreateProductAssociation(ctx context.Context, content *models.GroupProductContent) (*models.GroupProductContent, error)
	ListAssociationsByProduct(ctx context.Context, productID uuid.UUID) ([]models.GroupProductContent, error)
	DeleteAssociationsByProduct(ctx context.Context, productID uuid.UUID) error
}

// Repository is the gorm-backed GroupRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a group repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) GroupRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateGroup inserts a new group.
func (r *Repository) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// FindGroup loads a group by ID.
func (r *Repository) FindGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateMembership inserts a membership row.
func (r *Repository) CreateMembership(ctx context.Context, membership *models.GroupMembership) (*models.GroupMembership, error) {
	if membership.Role == "" {
		membership.Role = enums.GroupRoleMember
	}
	if membership.Status == "" {
		membership.Status = enums.MembershipStatusActive
	}
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// ListMemberships returns the user's membership rows in the group.
func (r *Repository) ListMemberships(ctx context.Context, groupID, userID uuid.UUID) ([]models.GroupMembership, error) {
	var rows []models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IsActiveMember reports whether the user holds at least one active membership.
func (r *Repository) IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ? AND status = ?", groupID, userID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateGrant inserts a group permission grant.
func (r *Repository) CreateGrant(ctx context.Context, grant *models.GroupPermissionGrant) (*models.GroupPermissionGrant, error) {
	if err := r.db.WithContext(ctx).Create(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

// HasGrant reports whether any of the roles holds the permission in the group.
func (r *Repository) HasGrant(ctx context.Context, groupID uuid.UUID, roles []enums.GroupRole, permission string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupPermissionGrant{}).
		Where("group_id = ? AND role IN ? AND permission = ?", groupID, roles, permission).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateGlobalGrant inserts a site-wide permission grant.
func (r *Repository) CreateGlobalGrant(ctx context.Context, grant *models.GlobalPermissionGrant) (*models.GlobalPermissionGrant, error) {
	if err := r.db.WithContext(ctx).Create(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

// HasGlobalGrant reports whether the system role holds the permission.
func (r *Repository) HasGlobalGrant(ctx context.Context, role enums.SystemRole, permission string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GlobalPermissionGrant{}).
		Where("role = ? AND permission = ?", role, permission).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAssociation inserts a group-content association row.
func (r *Repository) CreateAssociation(ctx context.Context, content *models.GroupContent) (*models.GroupContent, error) {
	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

// ListAssociationsByOrder returns the order's group associations in insertion order.
func (r *Repository) ListAssociationsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.GroupContent, error) {
	var rows []models.GroupContent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAssociationsByOrder removes all associations for the order.
func (r *Repository) DeleteAssociationsByOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.GroupContent{}).Error
}

// CreateProductAssociation inserts a group-product association row.
func (r *Repository) CreateProductAssociation(ctx context.Context, content *models.GroupProductContent) (*models.GroupProductContent, error) {
	if err := r.db.WithContext(ctx).Create(content).Error; err != nil {
		return nil, err
	}
	return content, nil
}

// ListAssociationsByProduct returns the product's group associations in insertion order.
func (r *Repository) ListAssociationsByProduct(ctx context.Context, productID uuid.UUID) ([]models.GroupProductContent, error) {
	var rows []models.GroupProductContent
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteAssociationsByProduct removes all associations for the product.
func (r *Repository) DeleteAssociationsByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.GroupProductContent{}).Error
}
