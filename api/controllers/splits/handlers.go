package splits

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gcommerce/groupcommerce-backend/api/middleware"
	"github.com/gcommerce/groupcommerce-backend/api/responses"
	"github.com/gcommerce/groupcommerce-backend/api/validators"
	"github.com/gcommerce/groupcommerce-backend/internal/orders"
	"github.com/gcommerce/groupcommerce-backend/internal/split"
	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
	"github.com/gcommerce/groupcommerce-backend/pkg/logger"
)

// AccessChecker guards split item operations.
type AccessChecker interface {
	Resolve(ctx context.Context, principal access.Principal, op enums.Operation, item *models.SplitItem, order *models.Order) (access.Decision, error)
}

type createSplitRequest struct {
	LineItemID uuid.UUID       `json:"line_item_id" validate:"required"`
	CustomerID uuid.UUID       `json:"customer_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
}

type updateSplitRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

type splitResponse struct {
	ID         uuid.UUID       `json:"id"`
	LineItemID uuid.UUID       `json:"line_item_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

func newSplitResponse(item *models.SplitItem) splitResponse {
	return splitResponse{
		ID:         item.ID,
		LineItemID: item.LineItemID,
		CustomerID: item.CustomerID,
		Quantity:   item.Quantity,
		Price:      item.Price,
	}
}

// Handlers bundles the collaborators every split endpoint needs.
type Handlers struct {
	splits  split.Service
	orders  orders.Service
	checker AccessChecker
	logg    *logger.Logger
}

func NewHandlers(splits split.Service, orderSvc orders.Service, checker AccessChecker, logg *logger.Logger) (*Handlers, error) {
	if splits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "split service required")
	}
	if orderSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service required")
	}
	if checker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "access checker required")
	}
	return &Handlers{splits: splits, orders: orderSvc, checker: checker, logg: logg}, nil
}

// Create allocates part of a line item to a customer.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}

	var body createSplitRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	candidate := &models.SplitItem{LineItemID: body.LineItemID, CustomerID: body.CustomerID}
	if !h.authorize(w, r, principal, enums.OperationCreate, candidate, order) {
		return
	}

	item, err := h.splits.Create(r.Context(), split.CreateInput{
		LineItemID: body.LineItemID,
		CustomerID: body.CustomerID,
		Quantity:   body.Quantity,
	})
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, newSplitResponse(item))
}

// Detail returns one split item.
func (h *Handlers) Detail(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	item, ok := h.loadSplit(w, r)
	if !ok {
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if !h.authorize(w, r, principal, enums.OperationView, item, order) {
		return
	}

	responses.WriteSuccess(w, newSplitResponse(item))
}

// UpdateQuantity changes a split's quantity; its price is rederived.
func (h *Handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	item, ok := h.loadSplit(w, r)
	if !ok {
		return
	}

	var body updateSplitRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if !h.authorize(w, r, principal, enums.OperationUpdate, item, order) {
		return
	}

	updated, err := h.splits.SetQuantity(r.Context(), item.ID, body.Quantity)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	responses.WriteSuccess(w, newSplitResponse(updated))
}

// Delete removes a split item.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadOrder(w, r)
	if !ok {
		return
	}
	item, ok := h.loadSplit(w, r)
	if !ok {
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if !h.authorize(w, r, principal, enums.OperationDelete, item, order) {
		return
	}

	if err := h.splits.Delete(r.Context(), item.ID); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]string{"status": "deleted"})
}

func (h *Handlers) authorize(w http.ResponseWriter, r *http.Request, principal access.Principal, op enums.Operation, item *models.SplitItem, order *models.Order) bool {
	decision, err := h.checker.Resolve(r.Context(), principal, op, item, order)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return false
	}
	if !decision.IsAllowed() {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "split item not accessible"))
		return false
	}
	return true
}

func (h *Handlers) loadOrder(w http.ResponseWriter, r *http.Request) (*models.Order, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
		return nil, false
	}
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return nil, false
	}
	return order, true
}

func (h *Handlers) loadSplit(w http.ResponseWriter, r *http.Request) (*models.SplitItem, bool) {
	splitID, err := uuid.Parse(chi.URLParam(r, "splitId"))
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid split item id"))
		return nil, false
	}
	item, err := h.splits.Get(r.Context(), splitID)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return nil, false
	}
	return item, true
}
