package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

type stubGroupRepo struct {
	memberships  []models.GroupMembership
	grants       map[uuid.UUID]map[enums.GroupRole]map[string]bool
	globalGrants map[enums.SystemRole]map[string]bool
	associations []models.GroupContent
	created      []models.GroupContent

	productAssociations []models.GroupProductContent
	productCreated      []models.GroupProductContent
}

func (s *stubGroupRepo) WithTx(tx *gorm.DB) GroupRepository { return s }

func (s *stubGroupRepo) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	return group, nil
}

func (s *stubGroupRepo) FindGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return &models.Group{ID: id}, nil
}

func (s *stubGroupRepo) CreateMembership(ctx context.Context, m *models.GroupMembership) (*models.GroupMembership, error) {
	s.memberships = append(s.memberships, *m)
	return m, nil
}

func (s *stubGroupRepo) ListMemberships(ctx context.Context, groupID, userID uuid.UUID) ([]models.GroupMembership, error) {
	var out []models.GroupMembership
	for _, m := range s.memberships {
		if m.GroupID == groupID && m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubGroupRepo) IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	for _, m := range s.memberships {
		if m.GroupID == groupID && m.UserID == userID && m.Status == enums.MembershipStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubGroupRepo) CreateGrant(ctx context.Context, g *models.GroupPermissionGrant) (*models.GroupPermissionGrant, error) {
	return g, nil
}

func (s *stubGroupRepo) HasGrant(ctx context.Context, groupID uuid.UUID, roles []enums.GroupRole, permission string) (bool, error) {
	byRole, ok := s.grants[groupID]
	if !ok {
		return false, nil
	}
	for _, role := range roles {
		if byRole[role][permission] {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubGroupRepo) CreateGlobalGrant(ctx context.Context, g *models.GlobalPermissionGrant) (*models.GlobalPermissionGrant, error) {
	return g, nil
}

func (s *stubGroupRepo) HasGlobalGrant(ctx context.Context, role enums.SystemRole, permission string) (bool, error) {
	return s.globalGrants[role][permission], nil
}

func (s *stubGroupRepo) CreateAssociation(ctx context.Context, c *models.GroupContent) (*models.GroupContent, error) {
	s.created = append(s.created, *c)
	return c, nil
}

func (s *stubGroupRepo) ListAssociationsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.GroupContent, error) {
	var out []models.GroupContent
	for _, c := range s.associations {
		if c.OrderID == orderID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubGroupRepo) DeleteAssociationsByOrder(ctx context.Context, orderID uuid.UUID) error {
	s.associations = nil
	return nil
}

func (s *stubGroupRepo) CreateProductAssociation(ctx context.Context, c *models.GroupProductContent) (*models.GroupProductContent, error) {
	s.productCreated = append(s.productCreated, *c)
	return c, nil
}

func (s *stubGroupRepo) ListAssociationsByProduct(ctx context.Context, productID uuid.UUID) ([]models.GroupProductContent, error) {
	var out []models.GroupProductContent
	for _, c := range s.productAssociations {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubGroupRepo) DeleteAssociationsByProduct(ctx context.Context, productID uuid.UUID) error {
	s.productAssociations = nil
	return nil
}

func grantRepo(groupID uuid.UUID, role enums.GroupRole, permission string) *stubGroupRepo {
	return &stubGroupRepo{
		grants: map[uuid.UUID]map[enums.GroupRole]map[string]bool{
			groupID: {role: {permission: true}},
		},
	}
}

func TestHasPermissionInGroupMemberRoles(t *testing.T) {
	t.Parallel()

	groupID := uuid.New()
	userID := uuid.New()
	const perm = "update own group_commerce_order:default cart"

	repo := grantRepo(groupID, enums.GroupRoleMember, perm)
	repo.memberships = []models.GroupMembership{
		{GroupID: groupID, UserID: userID, Role: enums.GroupRoleMember, Status: enums.MembershipStatusActive},
	}

	svc, err := NewService(repo, DefaultPluginRegistry())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ok, err := svc.HasPermissionInGroup(context.Background(), access.AuthenticatedPrincipal(userID), perm, groupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected member grant to apply")
	}
}

func TestHasPermissionInGroupBlockedMembershipFallsBackToOutsider(t *testing.T) {
	t.Parallel()

	groupID := uuid.New()
	userID := uuid.New()
	const perm = "view any group_commerce_order:default cart"

	repo := grantRepo(groupID, enums.GroupRoleMember, perm)
	repo.memberships = []models.GroupMembership{
		{GroupID: groupID, UserID: userID, Role: enums.GroupRoleMember, Status: enums.MembershipStatusBlocked},
	}

	svc, _ := NewService(repo, DefaultPluginRegistry())

	ok, err := svc.HasPermissionInGroup(context.Background(), access.AuthenticatedPrincipal(userID), perm, groupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("blocked membership must not confer member grants")
	}
}

func TestHasPermissionInGroupOutsiderAndAnonymous(t *testing.T) {
	t.Parallel()

	groupID := uuid.New()
	const perm = "view any group_commerce_order:default cart"

	repo := grantRepo(groupID, enums.GroupRoleOutsider, perm)
	repo.grants[groupID][enums.GroupRoleAnonymous] = map[string]bool{perm: true}

	svc, _ := NewService(repo, DefaultPluginRegistry())

	ok, err := svc.HasPermissionInGroup(context.Background(), access.AuthenticatedPrincipal(uuid.New()), perm, groupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected outsider grant for authenticated non-member")
	}

	ok, err = svc.HasPermissionInGroup(context.Background(), access.AnonymousPrincipal(nil, nil), perm, groupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected anonymous grant for anonymous principal")
	}
}

func TestHasGlobalPermissionAnonymousRoleOverride(t *testing.T) {
	t.Parallel()

	repo := &stubGroupRepo{
		globalGrants: map[enums.SystemRole]map[string]bool{
			enums.SystemRoleAnonymous: {"access checkout": true},
		},
	}
	svc, _ := NewService(repo, DefaultPluginRegistry())

	ok, err := svc.HasGlobalPermission(context.Background(), access.AnonymousPrincipal(nil, nil), enums.SystemRoleCustomer, "access checkout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("anonymous principal must be checked against the anonymous role")
	}
}

func TestAssociateOrderUsesRegisteredPlugin(t *testing.T) {
	t.Parallel()

	repo := &stubGroupRepo{}
	svc, _ := NewService(repo, DefaultPluginRegistry())

	groupID := uuid.New()
	order := &models.Order{ID: uuid.New(), Bundle: "default"}

	content, err := svc.AssociateOrder(context.Background(), groupID, order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.PluginID != "group_commerce_order:default" {
		t.Fatalf("unexpected plugin id %q", content.PluginID)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one association created, got %d", len(repo.created))
	}
}

func TestAssociateOrderUnregisteredBundle(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubGroupRepo{}, NewPluginRegistry())

	_, err := svc.AssociateOrder(context.Background(), uuid.New(), &models.Order{ID: uuid.New(), Bundle: "default"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeInvalidConfiguration {
		t.Fatalf("expected invalid configuration error, got %v", err)
	}
}

func TestAssociateProductUsesRegisteredPlugin(t *testing.T) {
	t.Parallel()

	repo := &stubGroupRepo{}
	svc, _ := NewService(repo, DefaultPluginRegistry())

	groupID := uuid.New()
	product := &models.Product{ID: uuid.New(), Bundle: "default"}

	content, err := svc.AssociateProduct(context.Background(), groupID, product)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.PluginID != "group_commerce_product:default" {
		t.Fatalf("unexpected plugin id %q", content.PluginID)
	}
	if len(repo.productCreated) != 1 {
		t.Fatalf("expected one association created, got %d", len(repo.productCreated))
	}
}

func TestAssociateProductUnregisteredBundle(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubGroupRepo{}, NewPluginRegistry())

	_, err := svc.AssociateProduct(context.Background(), uuid.New(), &models.Product{ID: uuid.New(), Bundle: "default"})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeInvalidConfiguration {
		t.Fatalf("expected invalid configuration error, got %v", err)
	}
}

func TestAssociationsForProductPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	repo := &stubGroupRepo{
		productAssociations: []models.GroupProductContent{
			{GroupID: first, ProductID: productID, PluginID: "group_commerce_product:default"},
			{GroupID: second, ProductID: productID, PluginID: "group_commerce_product:default"},
		},
	}
	svc, _ := NewService(repo, DefaultPluginRegistry())

	assocs, err := svc.AssociationsForProduct(context.Background(), productID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assocs) != 2 {
		t.Fatalf("expected 2 associations, got %d", len(assocs))
	}
	if assocs[0].GroupID != first || assocs[1].GroupID != second {
		t.Fatal("association order not preserved")
	}
}

func TestAssociationsForOrderPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	orderID := uuid.New()
	first := uuid.New()
	second := uuid.New()
	repo := &stubGroupRepo{
		associations: []models.GroupContent{
			{GroupID: first, OrderID: orderID, PluginID: "group_commerce_order:default"},
			{GroupID: second, OrderID: orderID, PluginID: "group_commerce_order:default"},
		},
	}
	svc, _ := NewService(repo, DefaultPluginRegistry())

	assocs, err := svc.AssociationsForOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assocs) != 2 {
		t.Fatalf("expected 2 associations, got %d", len(assocs))
	}
	if assocs[0].GroupID != first || assocs[1].GroupID != second {
		t.Fatal("association order not preserved")
	}
}
