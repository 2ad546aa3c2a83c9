package access

import (
	"testing"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

func TestPermissionString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		perm Permission
		want string
	}{
		{
			perm: NewPermission(enums.OperationUpdate, enums.ScopeOwn, "group_commerce_order:default", NounCart),
			want: "update own group_commerce_order:default cart",
		},
		{
			perm: NewPermission(enums.OperationCheckout, enums.ScopeAny, "group_commerce_order:default", NounEntity),
			want: "checkout any group_commerce_order:default entity",
		},
		{
			perm: NewPermission(enums.OperationView, enums.ScopeAny, "group_commerce_order:pos", NounCart),
			want: "view any group_commerce_order:pos cart",
		},
	}

	for _, tt := range tests {
		if got := tt.perm.String(); got != tt.want {
			t.Fatalf("got %q want %q", got, tt.want)
		}
	}
}

func TestSplitItemPermission(t *testing.T) {
	t.Parallel()

	if got := SplitItemPermission(enums.OperationUpdate, enums.ScopeAny); got != PermissionUpdateAnySplitItem {
		t.Fatalf("got %q want %q", got, PermissionUpdateAnySplitItem)
	}
	if got := SplitItemPermission(enums.OperationView, enums.ScopeOwn); got != PermissionViewOwnSplitItem {
		t.Fatalf("got %q want %q", got, PermissionViewOwnSplitItem)
	}
}

func TestPrincipalSessionOwnership(t *testing.T) {
	t.Parallel()

	active := uuid.New()
	completed := uuid.New()
	other := uuid.New()

	p := AnonymousPrincipal([]uuid.UUID{active}, []uuid.UUID{completed})
	if p.Authenticated {
		t.Fatal("anonymous principal should not be authenticated")
	}
	if !p.OwnsSessionCart(active) {
		t.Fatal("expected ownership of active session cart")
	}
	if !p.OwnsSessionCart(completed) {
		t.Fatal("expected ownership of completed session cart")
	}
	if p.OwnsSessionCart(other) {
		t.Fatal("unexpected ownership of foreign cart")
	}

	auth := AuthenticatedPrincipal(uuid.New())
	if !auth.Authenticated {
		t.Fatal("expected authenticated principal")
	}
}
