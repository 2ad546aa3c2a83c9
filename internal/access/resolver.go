package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/internal/groups"
	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
	"github.com/gcommerce/groupcommerce-backend/pkg/metrics"
)

// Surface labels used for metrics.
const (
	SurfaceCart     = "cart"
	SurfaceCheckout = "checkout"
	SurfaceOrder    = "order"
)

type associationLookup interface {
	AssociationsForOrder(ctx context.Context, orderID uuid.UUID) ([]groups.Association, error)
}

type groupPermissionEvaluator interface {
	HasPermissionInGroup(ctx context.Context, principal access.Principal, permission string, groupID uuid.UUID) (bool, error)
}

// GlobalPermissionEvaluator answers site-wide baseline permission checks for
// a principal, independent of any group.
type GlobalPermissionEvaluator interface {
	HasGlobalPermission(ctx context.Context, principal access.Principal, permission string) (bool, error)
}

// Resolver decides what a principal may do with an order across the cart,
// checkout, and plain order surfaces. Group grants are consulted through the
// order's group associations; ownership covers the personal scope.
type Resolver struct {
	associations associationLookup
	groupPerms   groupPermissionEvaluator
	globalPerms  GlobalPermissionEvaluator
	metrics      *metrics.AccessMetrics
}

// NewResolver builds a resolver from its collaborators. Metrics are optional.
func NewResolver(associations associationLookup, groupPerms groupPermissionEvaluator, globalPerms GlobalPermissionEvaluator, m *metrics.AccessMetrics) (*Resolver, error) {
	if associations == nil {
		return nil, fmt.Errorf("association lookup required")
	}
	if groupPerms == nil {
		return nil, fmt.Errorf("group permission evaluator required")
	}
	if globalPerms == nil {
		return nil, fmt.Errorf("global permission evaluator required")
	}
	return &Resolver{
		associations: associations,
		groupPerms:   groupPerms,
		globalPerms:  globalPerms,
		metrics:      m,
	}, nil
}

func orderTag(order *models.Order) string {
	return "order:" + order.ID.String()
}

// Owns reports whether the principal owns the order. Authenticated
// principals compare identity with the order's customer; anonymous sessions
// fall back to the cart IDs held in the session.
func Owns(principal access.Principal, order *models.Order) bool {
	if order == nil {
		return false
	}
	if principal.Authenticated {
		return order.CustomerID != nil && *order.CustomerID == principal.ID
	}
	return principal.OwnsSessionCart(order.ID)
}

// ResolveCart decides cart-surface access for an order. Evaluation walks the
// order's group associations in insertion order: an "any" grant wins
// outright, an "own" grant wins for the order's owner. An order with no
// group associations falls back to personal scope, so owners keep access
// to their group-free carts. If no layer grants access the result is
// Neutral so other layers may still allow it.
func (r *Resolver) ResolveCart(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error) {
	started := time.Now()
	decision, err := r.resolveCart(ctx, principal, op, order)
	r.observe(SurfaceCart, started, decision, err)
	return decision, err
}

func (r *Resolver) resolveCart(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error) {
	if order == nil {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if !op.IsValid() {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid operation %q", op))
	}
	if order.State == enums.OrderStateCanceled {
		return access.Denied().WithDependency(orderTag(order)), nil
	}

	assocs, err := r.associations.AssociationsForOrder(ctx, order.ID)
	if err != nil {
		return access.Decision{}, err
	}

	owner := Owns(principal, order)
	if len(assocs) == 0 {
		// Personal scope: the ownership check alone decides. Non-owners
		// stay Neutral rather than Denied so independent layers may
		// still grant access.
		if owner {
			return access.Allowed().
				WithDependency(orderTag(order)).
				VaryPerPrincipal(), nil
		}
		return access.Neutral().
			WithDependency(orderTag(order)).
			VaryPerPrincipal().
			VaryPerPermissions(), nil
	}

	for _, assoc := range assocs {
		anyPerm := access.NewPermission(op, enums.ScopeAny, assoc.PluginID, access.NounCart).String()
		ok, err := r.groupPerms.HasPermissionInGroup(ctx, principal, anyPerm, assoc.GroupID)
		if err != nil {
			return access.Decision{}, err
		}
		if ok {
			return access.Allowed().
				WithDependency(orderTag(order)).
				VaryPerPermissions(), nil
		}

		if !owner {
			continue
		}
		ownPerm := access.NewPermission(op, enums.ScopeOwn, assoc.PluginID, access.NounCart).String()
		ok, err = r.groupPerms.HasPermissionInGroup(ctx, principal, ownPerm, assoc.GroupID)
		if err != nil {
			return access.Decision{}, err
		}
		if ok {
			return access.Allowed().
				WithDependency(orderTag(order)).
				VaryPerPrincipal().
				VaryPerPermissions(), nil
		}
	}

	return access.Neutral().
		WithDependency(orderTag(order)).
		VaryPerPrincipal().
		VaryPerPermissions(), nil
}

// ResolveCheckout decides whether the principal may enter checkout for the
// order. Unlike the cart surface the result is binary: the group pass (or
// personal ownership when the order has no groups) is ANDed with the order
// having line items and the baseline "access checkout" permission.
func (r *Resolver) ResolveCheckout(ctx context.Context, principal access.Principal, order *models.Order) (access.Decision, error) {
	started := time.Now()
	decision, err := r.resolveCheckout(ctx, principal, order)
	r.observe(SurfaceCheckout, started, decision, err)
	return decision, err
}

func (r *Resolver) resolveCheckout(ctx context.Context, principal access.Principal, order *models.Order) (access.Decision, error) {
	if order == nil {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if order.State == enums.OrderStateCanceled {
		return access.Denied().WithDependency(orderTag(order)), nil
	}

	groupDecision, err := r.checkoutGroupPass(ctx, principal, order)
	if err != nil {
		return access.Decision{}, err
	}

	globalOK, err := r.globalPerms.HasGlobalPermission(ctx, principal, access.PermissionAccessCheckout)
	if err != nil {
		return access.Decision{}, err
	}

	decision := groupDecision.
		And(access.AllowedIf(order.HasItems())).
		And(access.AllowedIf(globalOK)).
		WithDependency(orderTag(order)).
		VaryPerPrincipal().
		VaryPerPermissions()

	// Checkout never reports Neutral: anything short of a grant is a refusal.
	if !decision.IsAllowed() {
		return access.Denied().
			WithDependency(orderTag(order)).
			VaryPerPrincipal().
			VaryPerPermissions(), nil
	}
	return decision, nil
}

func (r *Resolver) checkoutGroupPass(ctx context.Context, principal access.Principal, order *models.Order) (access.Decision, error) {
	assocs, err := r.associations.AssociationsForOrder(ctx, order.ID)
	if err != nil {
		return access.Decision{}, err
	}
	if len(assocs) == 0 {
		return access.AllowedIf(Owns(principal, order)), nil
	}

	owner := Owns(principal, order)
	for _, assoc := range assocs {
		anyPerm := access.NewPermission(enums.OperationCheckout, enums.ScopeAny, assoc.PluginID, access.NounEntity).String()
		ok, err := r.groupPerms.HasPermissionInGroup(ctx, principal, anyPerm, assoc.GroupID)
		if err != nil {
			return access.Decision{}, err
		}
		if ok {
			return access.Allowed(), nil
		}

		if !owner {
			continue
		}
		ownPerm := access.NewPermission(enums.OperationCheckout, enums.ScopeOwn, assoc.PluginID, access.NounEntity).String()
		ok, err = r.groupPerms.HasPermissionInGroup(ctx, principal, ownPerm, assoc.GroupID)
		if err != nil {
			return access.Decision{}, err
		}
		if ok {
			return access.Allowed(), nil
		}
	}
	return access.Denied(), nil
}

// ResolveOrder decides ordinary entity access for an order, the surface the
// split item checks build on. Canceled orders stay viewable but reject
// mutating operations.
func (r *Resolver) ResolveOrder(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error) {
	started := time.Now()
	decision, err := r.resolveOrder(ctx, principal, op, order)
	r.observe(SurfaceOrder, started, decision, err)
	return decision, err
}

func (r *Resolver) resolveOrder(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error) {
	if order == nil {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if !op.IsValid() {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid operation %q", op))
	}
	if order.State == enums.OrderStateCanceled && op != enums.OperationView {
		return access.Denied().WithDependency(orderTag(order)), nil
	}

	assocs, err := r.associations.AssociationsForOrder(ctx, order.ID)
	if err != nil {
		return access.Decision{}, err
	}

	owner := Owns(principal, order)
	if len(assocs) == 0 {
		return access.AllowedIf(owner).
			WithDependency(orderTag(order)).
			VaryPerPrincipal(), nil
	}

	for _, assoc := range assocs {
		anyPerm := access.NewPermission(op, enums.ScopeAny, assoc.PluginID, access.NounEntity).String()
		ok, err := r.groupPerms.HasPermissionInGroup(ctx, principal, anyPerm, assoc.GroupID)
		if err != nil {
			return access.Decision{}, err
		}
		if ok {
			return access.Allowed().
				WithDependency(orderTag(order)).
				VaryPerPermissions(), nil
		}

		if !owner {
			continue
		}
		ownPerm := access.NewPermission(op, enums.ScopeOwn, assoc.PluginID, access.NounEntity).String()
		ok, err = r.groupPerms.HasPermissionInGroup(ctx, principal, ownPerm, assoc.GroupID)
		if err != nil {
			return access.Decision{}, err
		}
		if ok {
			return access.Allowed().
				WithDependency(orderTag(order)).
				VaryPerPrincipal().
				VaryPerPermissions(), nil
		}
	}

	return access.Neutral().
		WithDependency(orderTag(order)).
		VaryPerPrincipal().
		VaryPerPermissions(), nil
}

func (r *Resolver) observe(surface string, started time.Time, decision access.Decision, err error) {
	if r.metrics == nil || err != nil {
		return
	}
	r.metrics.ObserveDecision(surface, decision.Outcome().String())
	r.metrics.ObserveDuration(surface, time.Since(started))
}
