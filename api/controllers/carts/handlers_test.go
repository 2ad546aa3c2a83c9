package carts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/api/middleware"
	orderaccess "github.com/gcommerce/groupcommerce-backend/internal/access"
	"github.com/gcommerce/groupcommerce-backend/internal/groups"
	"github.com/gcommerce/groupcommerce-backend/internal/orders"
	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	pkgAuth "github.com/gcommerce/groupcommerce-backend/pkg/auth"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

type stubOrderService struct {
	orders.Service

	order *models.Order
	saved *orders.LineItemInput
}

func (s *stubOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.order, nil
}

func (s *stubOrderService) SaveLineItem(ctx context.Context, input orders.LineItemInput) (*models.OrderLineItem, error) {
	s.saved = &input
	return &models.OrderLineItem{
		ID:        uuid.New(),
		OrderID:   input.OrderID,
		Title:     input.Title,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
	}, nil
}

type noAssociations struct{}

func (noAssociations) AssociationsForOrder(ctx context.Context, orderID uuid.UUID) ([]groups.Association, error) {
	return nil, nil
}

type denyGroupPerms struct{}

func (denyGroupPerms) HasPermissionInGroup(ctx context.Context, principal access.Principal, permission string, groupID uuid.UUID) (bool, error) {
	return false, nil
}

type denyGlobalPerms struct{}

func (denyGlobalPerms) HasGlobalPermission(ctx context.Context, principal access.Principal, permission string) (bool, error) {
	return false, nil
}

// newGroupFreeCartServer mounts UpsertItem behind a real router and the real
// resolver, with no group associations or grants configured. Access can only
// come from the personal scope.
func newGroupFreeCartServer(t *testing.T, order *models.Order) (*chi.Mux, *stubOrderService) {
	t.Helper()

	resolver, err := orderaccess.NewResolver(noAssociations{}, denyGroupPerms{}, denyGlobalPerms{}, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	svc := &stubOrderService{order: order}
	r := chi.NewRouter()
	r.Post("/carts/{cartId}/items", UpsertItem(svc, resolver, nil))
	return r, svc
}

func itemRequest(t *testing.T, order *models.Order, claims *pkgAuth.AccessTokenClaims) *http.Request {
	t.Helper()

	body := `{"title":"Widget","quantity":"2","unit_price":"5.00"}`
	req := httptest.NewRequest(http.MethodPost, "/carts/"+order.ID.String()+"/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestUpsertItemOwnerOfGroupFreeCart(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: &customerID,
		State:      enums.OrderStateDraft,
		IsCart:     true,
		Currency:   enums.CurrencyUSD,
	}
	router, svc := newGroupFreeCartServer(t, order)

	claims := &pkgAuth.AccessTokenClaims{UserID: &customerID, Role: enums.SystemRoleCustomer}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, itemRequest(t, order, claims))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected owner to reach their cart, got status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.saved == nil {
		t.Fatal("expected the line item to be saved")
	}
	if svc.saved.OrderID != order.ID {
		t.Fatalf("line item saved against wrong order %s", svc.saved.OrderID)
	}
}

func TestUpsertItemStrangerOnGroupFreeCart(t *testing.T) {
	t.Parallel()

	customerID := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: &customerID,
		State:      enums.OrderStateDraft,
		IsCart:     true,
		Currency:   enums.CurrencyUSD,
	}
	router, svc := newGroupFreeCartServer(t, order)

	strangerID := uuid.New()
	claims := &pkgAuth.AccessTokenClaims{UserID: &strangerID, Role: enums.SystemRoleCustomer}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, itemRequest(t, order, claims))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-owner, got %d", rec.Code)
	}
	if svc.saved != nil {
		t.Fatal("line item must not be saved for a non-owner")
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if envelope.Error.Code != "FORBIDDEN" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestUpsertItemGuestSessionOwner(t *testing.T) {
	t.Parallel()

	order := &models.Order{
		ID:       uuid.New(),
		State:    enums.OrderStateDraft,
		IsCart:   true,
		Currency: enums.CurrencyUSD,
	}
	router, svc := newGroupFreeCartServer(t, order)

	claims := &pkgAuth.AccessTokenClaims{
		Role:           enums.SystemRoleAnonymous,
		SessionCartIDs: []uuid.UUID{order.ID},
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, itemRequest(t, order, claims))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected guest session to reach its cart, got status %d: %s", rec.Code, rec.Body.String())
	}
	if svc.saved == nil {
		t.Fatal("expected the line item to be saved")
	}
}
