package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:users_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL,
		system_role TEXT NOT NULL DEFAULT 'customer',
		is_active INTEGER NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		default_context_group_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	return db
}

func seedUserRow(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  "Seeded User",
		SystemRole:   enums.SystemRoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryCreateAndFindByEmail(t *testing.T) {
	t.Parallel()

	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		DisplayName:  "Shopper",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.SystemRoleCustomer, created.SystemRole)
	assert.True(t, created.IsActive)

	found, err := repo.FindByEmail(ctx, "shopper@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Shopper", found.DisplayName)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	t.Parallel()

	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	user := seedUserRow(t, db, "login@example.com")

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastLoginAt)
	assert.True(t, loaded.LastLoginAt.Equal(at))
}

func TestRepositorySetDefaultContextGroup(t *testing.T) {
	t.Parallel()

	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	user := seedUserRow(t, db, "context@example.com")

	groupID := uuid.New()
	require.NoError(t, repo.SetDefaultContextGroup(ctx, user.ID, &groupID))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.DefaultContextGroupID)
	assert.Equal(t, groupID, *loaded.DefaultContextGroupID)

	require.NoError(t, repo.SetDefaultContextGroup(ctx, user.ID, nil))

	loaded, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.DefaultContextGroupID)
}
