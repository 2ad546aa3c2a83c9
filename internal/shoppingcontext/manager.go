package shoppingcontext

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

type contextStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ShoppingContextKey(userID string) string
}

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetDefaultContextGroup(ctx context.Context, id uuid.UUID, groupID *uuid.UUID) error
}

type membershipChecker interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

// Manager tracks each customer's current shopping context: the group they
// are currently shopping on behalf of. The current context lives in Redis
// with a TTL; a durable default lives on the user record and is used when
// nothing is stored.
type Manager struct {
	store       contextStore
	users       userStore
	memberships membershipChecker
	ttl         time.Duration
}

// NewManager builds a shopping context manager.
func NewManager(store contextStore, users userStore, memberships membershipChecker, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("context store required")
	}
	if users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("context ttl must be positive")
	}
	return &Manager{store: store, users: users, memberships: memberships, ttl: ttl}, nil
}

// Current returns the principal's shopping context group ID, or nil when no
// context applies. Anonymous sessions never have a context. A stored context
// the user can no longer use is cleared and nil is returned; going stale is
// not an error.
func (m *Manager) Current(ctx context.Context, principal access.Principal) (*uuid.UUID, error) {
	if !principal.Authenticated {
		return nil, nil
	}
	return m.CurrentGroupID(ctx, principal.ID)
}

// CurrentGroupID is Current for a known user ID.
func (m *Manager) CurrentGroupID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	key := m.store.ShoppingContextKey(userID.String())

	raw, err := m.store.Get(ctx, key)
	switch {
	case err == nil:
		groupID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			// Unreadable value: drop it and fall through to the default.
			if delErr := m.store.Del(ctx, key); delErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, delErr, "clear shopping context")
			}
			return m.defaultContext(ctx, userID)
		}
		ok, err := m.memberships.IsMember(ctx, groupID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			if delErr := m.store.Del(ctx, key); delErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, delErr, "clear shopping context")
			}
			return m.defaultContext(ctx, userID)
		}
		return &groupID, nil

	case errors.Is(err, redislib.Nil):
		return m.defaultContext(ctx, userID)

	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read shopping context")
	}
}

func (m *Manager) defaultContext(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.DefaultContextGroupID == nil {
		return nil, nil
	}

	groupID := *user.DefaultContextGroupID
	ok, err := m.memberships.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Stale default: heal the user record instead of surfacing errors on
		// every read.
		if err := m.users.SetDefaultContextGroup(ctx, userID, nil); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default context")
		}
		return nil, nil
	}
	return &groupID, nil
}

// Set stores the principal's current shopping context. Anonymous sessions
// cannot hold a context.
func (m *Manager) Set(ctx context.Context, principal access.Principal, groupID uuid.UUID) error {
	if !principal.Authenticated {
		return pkgerrors.New(pkgerrors.CodeValidation, "anonymous sessions cannot hold a shopping context")
	}
	if groupID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "group id is required")
	}

	ok, err := m.memberships.IsMember(ctx, groupID, principal.ID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of the context group")
	}

	key := m.store.ShoppingContextKey(principal.ID.String())
	if err := m.store.Set(ctx, key, groupID.String(), m.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store shopping context")
	}
	return nil
}

// Clear removes the principal's current shopping context. Clearing an
// already-empty context is a no-op.
func (m *Manager) Clear(ctx context.Context, principal access.Principal) error {
	if !principal.Authenticated {
		return pkgerrors.New(pkgerrors.CodeValidation, "anonymous sessions cannot hold a shopping context")
	}
	key := m.store.ShoppingContextKey(principal.ID.String())
	if err := m.store.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear shopping context")
	}
	return nil
}

// Default returns the principal's persisted default context group, without
// membership validation.
func (m *Manager) Default(ctx context.Context, principal access.Principal) (*uuid.UUID, error) {
	if !principal.Authenticated {
		return nil, nil
	}
	user, err := m.users.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user.DefaultContextGroupID, nil
}

// SetDefault persists the principal's default context group. Passing nil
// clears it.
func (m *Manager) SetDefault(ctx context.Context, principal access.Principal, groupID *uuid.UUID) error {
	if !principal.Authenticated {
		return pkgerrors.New(pkgerrors.CodeValidation, "anonymous sessions cannot hold a shopping context")
	}
	if groupID != nil {
		ok, err := m.memberships.IsMember(ctx, *groupID, principal.ID)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not a member of the context group")
		}
	}
	if err := m.users.SetDefaultContextGroup(ctx, principal.ID, groupID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist default context")
	}
	return nil
}
