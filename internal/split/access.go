package split

import (
	"context"
	"fmt"

	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/db/models"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

type orderResolver interface {
	ResolveOrder(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error)
	ResolveCart(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (access.Decision, error)
}

type globalPermissionEvaluator interface {
	HasGlobalPermission(ctx context.Context, principal access.Principal, permission string) (bool, error)
}

// AccessChecker decides split item access. Split item permissions gate the
// door: without the right "<op> any|own split item" permission the order is
// never consulted and the result is a short-circuit Denied. With it, access
// follows the parent order, falling back to the cart surface for cart
// orders.
type AccessChecker struct {
	resolver    orderResolver
	globalPerms globalPermissionEvaluator
}

// NewAccessChecker builds a split item access checker.
func NewAccessChecker(resolver orderResolver, globalPerms globalPermissionEvaluator) (*AccessChecker, error) {
	if resolver == nil {
		return nil, fmt.Errorf("order resolver required")
	}
	if globalPerms == nil {
		return nil, fmt.Errorf("global permission evaluator required")
	}
	return &AccessChecker{resolver: resolver, globalPerms: globalPerms}, nil
}

func splitTag(item *models.SplitItem) string {
	return "split_item:" + item.ID.String()
}

// Resolve decides whether the principal may perform op on the split item.
// The order must be the order the split item's line item belongs to.
func (c *AccessChecker) Resolve(ctx context.Context, principal access.Principal, op enums.Operation, item *models.SplitItem, order *models.Order) (access.Decision, error) {
	if item == nil {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "split item is required")
	}
	if order == nil {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order is required")
	}
	if !op.IsValid() {
		return access.Decision{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid operation %q", op))
	}

	ok, err := c.hasBasePermission(ctx, principal, op, item)
	if err != nil {
		return access.Decision{}, err
	}
	if !ok {
		// The refusal does not depend on the order, so only the split item
		// itself is a cache dependency.
		return access.Denied().
			WithDependency(splitTag(item)).
			VaryPerPrincipal().
			VaryPerPermissions(), nil
	}

	// Creating or deleting a split reshapes the parent's allocation, so both
	// map onto update access on the order.
	effectiveOp := op
	if op == enums.OperationCreate || op == enums.OperationDelete {
		effectiveOp = enums.OperationUpdate
	}

	orderDecision, err := c.resolver.ResolveOrder(ctx, principal, effectiveOp, order)
	if err != nil {
		return access.Decision{}, err
	}
	if orderDecision.IsAllowed() {
		return access.Allowed().
			WithDependency(splitTag(item)).
			WithDependency(orderDecision.Dependencies()...).
			VaryPerPrincipal().
			VaryPerPermissions(), nil
	}

	if order.IsCart {
		cartOK, err := c.hasCartAccess(ctx, principal, effectiveOp, order)
		if err != nil {
			return access.Decision{}, err
		}
		if cartOK {
			return access.Allowed().
				WithDependency(splitTag(item), "order:"+order.ID.String()).
				VaryPerPrincipal().
				VaryPerPermissions(), nil
		}
	}

	return access.Denied().
		WithDependency(splitTag(item), "order:"+order.ID.String()).
		VaryPerPrincipal().
		VaryPerPermissions(), nil
}

func (c *AccessChecker) hasBasePermission(ctx context.Context, principal access.Principal, op enums.Operation, item *models.SplitItem) (bool, error) {
	anyPerm := access.SplitItemPermission(op, enums.ScopeAny)
	ok, err := c.globalPerms.HasGlobalPermission(ctx, principal, anyPerm)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	if !principal.Authenticated || item.CustomerID != principal.ID {
		return false, nil
	}
	ownPerm := access.SplitItemPermission(op, enums.ScopeOwn)
	return c.globalPerms.HasGlobalPermission(ctx, principal, ownPerm)
}

// hasCartAccess checks cart-surface access for the order. Calling it with a
// non-cart order is a programming error and is rejected loudly instead of
// returning a decision.
func (c *AccessChecker) hasCartAccess(ctx context.Context, principal access.Principal, op enums.Operation, order *models.Order) (bool, error) {
	if !order.IsCart {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "cart access checked on an order that is not a cart")
	}
	decision, err := c.resolver.ResolveCart(ctx, principal, op, order)
	if err != nil {
		return false, err
	}
	return decision.IsAllowed(), nil
}
