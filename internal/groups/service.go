package groups

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

// Association pairs a group with the plugin that relates a piece of content,
// an order or a product, to it.
type Association struct {
	GroupID  uuid.UUID
	PluginID string
}

// Service exposes group membership, grants, and content associations.
type Service interface {
	HasPermissionInGroup(ctx context.Context, principal access.Principal, permission string, groupID uuid.UUID) (bool, error)
	HasGlobalPermission(ctx context.Context, principal access.Principal, role enums.SystemRole, permission string) (bool, error)
	AssociationsForOrder(ctx context.Context, orderID uuid.UUID) ([]Association, error)
	AssociateOrder(ctx context.Context, groupID uuid.UUID, order *models.Order) (*models.GroupContent, error)
	DissociateOrder(ctx context.Context, orderID uuid.UUID) error
	AssociationsForProduct(ctx context.Context, productID uuid.UUID) ([]Association, error)
	AssociateProduct(ctx context.Context, groupID uuid.UUID, product *models.Product) (*models.GroupProductContent, error)
	DissociateProduct(ctx context.Context, productID uuid.UUID) error
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type service struct {
	repo    GroupRepository
	plugins *PluginRegistry
}

// NewService builds a group service backed by the provided repository and
// plugin registry.
func NewService(repo GroupRepository, plugins *PluginRegistry) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("group repository required")
	}
	if plugins == nil {
		return nil, fmt.Errorf("plugin registry required")
	}
	return &service{repo: repo, plugins: plugins}, nil
}

// HasPermissionInGroup checks the permission against the roles the principal
// holds in the group. Members get the union of their membership roles;
// authenticated non-members are checked as the synthetic outsider role and
// anonymous principals as the synthetic anonymous role.
func (s *service) HasPermissionInGroup(ctx context.Context, principal access.Principal, permission string, groupID uuid.UUID) (bool, error) {
	if groupID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}
	if permission == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "permission is required")
	}

	roles, err := s.rolesInGroup(ctx, principal, groupID)
	if err != nil {
		return false, err
	}
	return s.repo.HasGrant(ctx, groupID, roles, permission)
}

func (s *service) rolesInGroup(ctx context.Context, principal access.Principal, groupID uuid.UUID) ([]enums.GroupRole, error) {
	if !principal.Authenticated {
		return []enums.GroupRole{enums.GroupRoleAnonymous}, nil
	}

	memberships, err := s.repo.ListMemberships(ctx, groupID, principal.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load memberships")
	}

	var roles []enums.GroupRole
	for _, m := range memberships {
		if m.Status != enums.MembershipStatusActive {
			continue
		}
		roles = append(roles, m.Role)
	}
	if len(roles) == 0 {
		return []enums.GroupRole{enums.GroupRoleOutsider}, nil
	}
	return roles, nil
}

// HasGlobalPermission checks a site-wide permission for the principal's
// system role. Anonymous principals are always checked as the anonymous role.
func (s *service) HasGlobalPermission(ctx context.Context, principal access.Principal, role enums.SystemRole, permission string) (bool, error) {
	if permission == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "permission is required")
	}
	if !principal.Authenticated {
		role = enums.SystemRoleAnonymous
	}
	if !role.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid system role %q", role))
	}
	return s.repo.HasGlobalGrant(ctx, role, permission)
}

// AssociationsForOrder returns the (group, plugin) pairs the order belongs
// to, oldest association first.
func (s *service) AssociationsForOrder(ctx context.Context, orderID uuid.UUID) ([]Association, error) {
	rows, err := s.repo.ListAssociationsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group associations")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]Association, 0, len(rows))
	for _, row := range rows {
		out = append(out, Association{GroupID: row.GroupID, PluginID: row.PluginID})
	}
	return out, nil
}

// AssociateOrder relates the order to a group through the plugin registered
// for the order's bundle.
func (s *service) AssociateOrder(ctx context.Context, groupID uuid.UUID, order *models.Order) (*models.GroupContent, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}

	pluginID, err := s.plugins.OrderPluginID(order.Bundle)
	if err != nil {
		return nil, err
	}

	content, err := s.repo.CreateAssociation(ctx, &models.GroupContent{
		GroupID:  groupID,
		OrderID:  order.ID,
		PluginID: pluginID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group association")
	}
	return content, nil
}

// DissociateOrder removes the order from all groups.
func (s *service) DissociateOrder(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if err := s.repo.DeleteAssociationsByOrder(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete group associations")
	}
	return nil
}

// AssociationsForProduct returns the (group, plugin) pairs the product
// belongs to, oldest association first.
func (s *service) AssociationsForProduct(ctx context.Context, productID uuid.UUID) ([]Association, error) {
	rows, err := s.repo.ListAssociationsByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group product associations")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]Association, 0, len(rows))
	for _, row := range rows {
		out = append(out, Association{GroupID: row.GroupID, PluginID: row.PluginID})
	}
	return out, nil
}

// AssociateProduct relates the product to a group through the plugin
// registered for the product's bundle.
func (s *service) AssociateProduct(ctx context.Context, groupID uuid.UUID, product *models.Product) (*models.GroupProductContent, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}

	pluginID, err := s.plugins.ProductPluginID(product.Bundle)
	if err != nil {
		return nil, err
	}

	content, err := s.repo.CreateProductAssociation(ctx, &models.GroupProductContent{
		GroupID:   groupID,
		ProductID: product.ID,
		PluginID:  pluginID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group product association")
	}
	return content, nil
}

// DissociateProduct removes the product from all groups.
func (s *service) DissociateProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if err := s.repo.DeleteAssociationsByProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete group product associations")
	}
	return nil
}

// IsMember reports whether the user holds at least one active membership.
func (s *service) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	if groupID == uuid.Nil || userID == uuid.Nil {
		return false, nil
	}
	return s.repo.IsActiveMember(ctx, groupID, userID)
}
