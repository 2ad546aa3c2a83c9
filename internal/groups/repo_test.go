package groups

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:groups_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	statements := []string{
		`CREATE TABLE groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL DEFAULT 'default',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE group_memberships (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'member',
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE group_permission_grants (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			role TEXT NOT NULL,
			permission TEXT NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE global_permission_grants (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL,
			permission TEXT NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE group_contents (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			order_id TEXT NOT NULL,
			plugin_id TEXT NOT NULL,
			created_at DATETIME
		)`,
		`CREATE TABLE group_product_contents (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			plugin_id TEXT NOT NULL,
			created_at DATETIME
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func TestRepositoryGrantLookup(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	groupID := uuid.New()
	const perm = "update own group_commerce_order:default cart"

	if _, err := repo.CreateGrant(ctx, &models.GroupPermissionGrant{
		ID:         uuid.New(),
		GroupID:    groupID,
		Role:       enums.GroupRoleMember,
		Permission: perm,
	}); err != nil {
		t.Fatalf("create grant: %v", err)
	}

	ok, err := repo.HasGrant(ctx, groupID, []enums.GroupRole{enums.GroupRoleMember}, perm)
	if err != nil {
		t.Fatalf("has grant: %v", err)
	}
	if !ok {
		t.Fatal("expected grant to be found")
	}

	ok, err = repo.HasGrant(ctx, groupID, []enums.GroupRole{enums.GroupRoleOutsider}, perm)
	if err != nil {
		t.Fatalf("has grant: %v", err)
	}
	if ok {
		t.Fatal("outsider must not match member grant")
	}

	ok, err = repo.HasGrant(ctx, groupID, nil, perm)
	if err != nil {
		t.Fatalf("has grant: %v", err)
	}
	if ok {
		t.Fatal("empty role set must not match")
	}
}

func TestRepositoryMembershipStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	groupID := uuid.New()
	userID := uuid.New()

	if _, err := repo.CreateMembership(ctx, &models.GroupMembership{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  userID,
		Role:    enums.GroupRoleManager,
		Status:  enums.MembershipStatusBlocked,
	}); err != nil {
		t.Fatalf("create membership: %v", err)
	}

	active, err := repo.IsActiveMember(ctx, groupID, userID)
	if err != nil {
		t.Fatalf("is active member: %v", err)
	}
	if active {
		t.Fatal("blocked membership must not count as active")
	}

	rows, err := repo.ListMemberships(ctx, groupID, userID)
	if err != nil {
		t.Fatalf("list memberships: %v", err)
	}
	if len(rows) != 1 || rows[0].Role != enums.GroupRoleManager {
		t.Fatalf("unexpected memberships %+v", rows)
	}
}

func TestRepositoryAssociationOrdering(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	groupA := uuid.New()
	groupB := uuid.New()

	for _, groupID := range []uuid.UUID{groupA, groupB} {
		if _, err := repo.CreateAssociation(ctx, &models.GroupContent{
			ID:       uuid.New(),
			GroupID:  groupID,
			OrderID:  orderID,
			PluginID: "group_commerce_order:default",
		}); err != nil {
			t.Fatalf("create association: %v", err)
		}
	}

	rows, err := repo.ListAssociationsByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 associations, got %d", len(rows))
	}

	if err := repo.DeleteAssociationsByOrder(ctx, orderID); err != nil {
		t.Fatalf("delete associations: %v", err)
	}
	rows, err = repo.ListAssociationsByOrder(ctx, orderID)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected associations removed, got %d", len(rows))
	}
}

func TestRepositoryProductAssociationLifecycle(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	productID := uuid.New()
	groupA := uuid.New()
	groupB := uuid.New()

	for _, groupID := range []uuid.UUID{groupA, groupB} {
		if _, err := repo.CreateProductAssociation(ctx, &models.GroupProductContent{
			ID:        uuid.New(),
			GroupID:   groupID,
			ProductID: productID,
			PluginID:  "group_commerce_product:default",
		}); err != nil {
			t.Fatalf("create association: %v", err)
		}
	}

	rows, err := repo.ListAssociationsByProduct(ctx, productID)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 associations, got %d", len(rows))
	}

	if err := repo.DeleteAssociationsByProduct(ctx, productID); err != nil {
		t.Fatalf("delete associations: %v", err)
	}
	rows, err = repo.ListAssociationsByProduct(ctx, productID)
	if err != nil {
		t.Fatalf("list associations: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected associations removed, got %d", len(rows))
	}
}
