package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type stubSessionStore struct {
	values map[string]string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{values: map[string]string{}}
}

func (s *stubSessionStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubSessionStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (s *stubSessionStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *stubSessionStore) AccessSessionKey(accessID string) string {
	return "gc:session:" + accessID
}

func newTestManager() (*Manager, *stubSessionStore) {
	store := newStubSessionStore()
	return &Manager{store: store, ttl: time.Hour}, store
}

func TestGenerateStoresSecret(t *testing.T) {
	t.Parallel()

	mgr, store := newTestManager()
	accessID := NewAccessID()

	secret, err := mgr.Generate(context.Background(), accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if secret == "" {
		t.Fatal("expected non-empty refresh secret")
	}
	if store.values["gc:session:"+accessID] != secret {
		t.Fatal("stored secret does not match returned secret")
	}

	if _, err := mgr.Generate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}

func TestRotateReplacesSession(t *testing.T) {
	t.Parallel()

	mgr, store := newTestManager()
	ctx := context.Background()
	oldID := NewAccessID()

	secret, err := mgr.Generate(ctx, oldID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	newID, newSecret, err := mgr.Rotate(ctx, oldID, secret)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newID == oldID {
		t.Fatal("expected a fresh access id")
	}
	if _, ok := store.values["gc:session:"+oldID]; ok {
		t.Fatal("expected old session to be deleted")
	}
	if store.values["gc:session:"+newID] != newSecret {
		t.Fatal("expected new session to be stored")
	}

	// old pair must be dead after rotation
	if _, _, err := mgr.Rotate(ctx, oldID, secret); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ctx := context.Background()
	accessID := NewAccessID()

	if _, err := mgr.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, accessID, "forged-secret"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
	if _, _, err := mgr.Rotate(ctx, "unknown-id", "anything"); err != ErrInvalidRefreshToken {
		t.Fatalf("expected ErrInvalidRefreshToken for unknown session, got %v", err)
	}
}

func TestRevokeAndHasSession(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ctx := context.Background()
	accessID := NewAccessID()

	if _, err := mgr.Generate(ctx, accessID); err != nil {
		t.Fatalf("generate: %v", err)
	}

	active, err := mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !active {
		t.Fatal("expected session to be active")
	}

	if err := mgr.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	active, err = mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if active {
		t.Fatal("expected session to be gone after revoke")
	}
}
