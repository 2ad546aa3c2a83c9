package carts

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcommerce/groupcommerce-backend/api/middleware"
	"github.com/gcommerce/groupcommerce-backend/api/responses"
	"github.com/gcommerce/groupcommerce-backend/api/validators"
	authsvc "github.com/gcommerce/groupcommerce-backend/internal/auth"
	"github.com/gcommerce/groupcommerce-backend/internal/orders"
	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	pkgAuth "github.com/gcommerce/groupcommerce-backend/pkg/auth"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
	"github.com/gcommerce/groupcommerce-backend/pkg/logger"
	"github.com/gcommerce/groupcommerce-backend/pkg/pagination"
)

// AccessResolver decides whether the caller may act on an order.
type AccessResolver interface {
	ResolveCart(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error)
	ResolveCheckout(ctx context.Context, principal access.Principal, order *models.Order) (access.Decision, error)
	ResolveOrder(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error)
}

type guestTokenReissuer interface {
	ReissueGuestToken(ctx context.Context, claims *pkgAuth.AccessTokenClaims, sessionCartIDs, completedCartIDs []uuid.UUID) (string, error)
}

type createCartRequest struct {
	Bundle   string         `json:"bundle"`
	Currency enums.Currency `json:"currency"`
}

type lineItemRequest struct {
	Title     string          `json:"title" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type cartResponse struct {
	orderResponse
	// AccessToken is set for guest sessions whose cart ID set changed.
	AccessToken string `json:"access_token,omitempty"`
}

var _ guestTokenReissuer = (authsvc.Service)(nil)

// Create opens a new draft cart for the caller. Guests get a replacement
// token that carries the new cart in its session set.
func Create(svc orders.Service, reissuer guestTokenReissuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body createCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		order, err := svc.CreateCart(r.Context(), principal, orders.CreateCartInput{
			Bundle:   body.Bundle,
			Currency: body.Currency,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := cartResponse{orderResponse: newOrderResponse(order)}
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.IsAnonymous() && reissuer != nil {
			token, err := reissuer.ReissueGuestToken(
				r.Context(),
				claims,
				append(claims.SessionCartIDs, order.ID),
				claims.CompletedCartIDs,
			)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			resp.AccessToken = token
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// List returns the caller's carts: the context group's carts while a
// shopping context is active, otherwise the caller's own.
func List(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		carts, err := svc.ListCarts(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, next := paginate(carts, cursor, limit)
		resp := orderListResponse{Orders: make([]orderResponse, 0, len(page)), NextCursor: next}
		for i := range page {
			resp.Orders = append(resp.Orders, newOrderResponse(&page[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// Detail returns a single order when the caller may view it.
func Detail(svc orders.Service, resolver AccessResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, principal, ok := loadOrder(w, r, svc, logg)
		if !ok {
			return
		}

		decision, err := resolver.ResolveOrder(r.Context(), principal, enums.OperationView, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !decision.IsAllowed() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order not accessible"))
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// UpsertItem creates or updates a line item on a cart.
func UpsertItem(svc orders.Service, resolver AccessResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, principal, ok := loadOrder(w, r, svc, logg)
		if !ok {
			return
		}

		decision, err := resolver.ResolveCart(r.Context(), principal, enums.OperationUpdate, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !decision.IsAllowed() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cart not accessible"))
			return
		}

		var body lineItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.LineItemInput{
			OrderID:   order.ID,
			Title:     validators.SanitizeString(body.Title, 255),
			Quantity:  body.Quantity,
			UnitPrice: body.UnitPrice,
		}
		if raw := chi.URLParam(r, "itemId"); raw != "" {
			itemID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item id"))
				return
			}
			input.ID = &itemID
		}

		item, err := svc.SaveLineItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, lineItemResponse{
			ID:         item.ID,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
}

// DeleteItem removes a line item and its splits.
func DeleteItem(svc orders.Service, resolver AccessResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, principal, ok := loadOrder(w, r, svc, logg)
		if !ok {
			return
		}

		decision, err := resolver.ResolveCart(r.Context(), principal, enums.OperationUpdate, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !decision.IsAllowed() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "cart not accessible"))
			return
		}

		itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line item id"))
			return
		}

		if err := svc.DeleteLineItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CheckoutAccess reports whether the caller may take the cart to checkout.
func CheckoutAccess(svc orders.Service, resolver AccessResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, principal, ok := loadOrder(w, r, svc, logg)
		if !ok {
			return
		}

		decision, err := resolver.ResolveCheckout(r.Context(), principal, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, checkoutAccessResponse{Allowed: decision.IsAllowed()})
	}
}

// Checkout places the cart. Guests get a replacement token that moves the
// cart into their completed set so the placed order stays viewable.
func Checkout(svc orders.Service, resolver AccessResolver, reissuer guestTokenReissuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, principal, ok := loadOrder(w, r, svc, logg)
		if !ok {
			return
		}

		decision, err := resolver.ResolveCheckout(r.Context(), principal, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !decision.IsAllowed() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "checkout not permitted"))
			return
		}

		placed, err := svc.PlaceOrder(r.Context(), order.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := cartResponse{orderResponse: newOrderResponse(placed)}
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.IsAnonymous() && reissuer != nil {
			token, err := reissuer.ReissueGuestToken(
				r.Context(),
				claims,
				removeID(claims.SessionCartIDs, placed.ID),
				append(claims.CompletedCartIDs, placed.ID),
			)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			resp.AccessToken = token
		}

		responses.WriteSuccess(w, resp)
	}
}

// Cancel voids an order the caller may update.
func Cancel(svc orders.Service, resolver AccessResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, principal, ok := loadOrder(w, r, svc, logg)
		if !ok {
			return
		}

		decision, err := resolver.ResolveOrder(r.Context(), principal, enums.OperationUpdate, order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !decision.IsAllowed() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "order not accessible"))
			return
		}

		if err := svc.CancelOrder(r.Context(), order.ID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "canceled"})
	}
}

func loadOrder(w http.ResponseWriter, r *http.Request, svc orders.Service, logg *logger.Logger) (*models.Order, access.Principal, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
		return nil, access.Principal{}, false
	}

	raw := chi.URLParam(r, "cartId")
	if raw == "" {
		raw = chi.URLParam(r, "orderId")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
		return nil, access.Principal{}, false
	}

	order, err := svc.GetOrder(r.Context(), orderID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, access.Principal{}, false
	}

	return order, middleware.PrincipalFromContext(r.Context()), true
}

// paginate applies cursor pagination over a created_at DESC ordering.
func paginate(all []models.Order, cursor *pagination.Cursor, limit int) ([]models.Order, string) {
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() > all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := 0
	if cursor != nil {
		for i := range all {
			if all[i].CreatedAt.Before(cursor.CreatedAt) ||
				(all[i].CreatedAt.Equal(cursor.CreatedAt) && all[i].ID.String() < cursor.ID.String()) {
				start = i
				break
			}
			start = len(all)
		}
	}

	limit = pagination.NormalizeLimit(limit)
	end := start + limit
	if end >= len(all) {
		return all[start:], ""
	}
	last := all[end-1]
	return all[start:end], pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
