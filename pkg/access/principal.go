package access

import "github.com/google/uuid"

// Principal is the acting identity for an access check. It is supplied per
// request and never persisted. Anonymous principals carry the cart IDs held
// in their session; those sets stand in for ownership since there is no
// durable identity to compare against.
type Principal struct {
	ID               uuid.UUID
	Authenticated    bool
	ActiveCartIDs    []uuid.UUID
	CompletedCartIDs []uuid.UUID
}

// AuthenticatedPrincipal builds a principal for a signed-in user.
func AuthenticatedPrincipal(id uuid.UUID) Principal {
	return Principal{ID: id, Authenticated: true}
}

// AnonymousPrincipal builds a principal for a session without an account.
func AnonymousPrincipal(activeCartIDs, completedCartIDs []uuid.UUID) Principal {
	return Principal{
		ActiveCartIDs:    activeCartIDs,
		CompletedCartIDs: completedCartIDs,
	}
}

// OwnsSessionCart reports whether the anonymous session holds the given cart,
// either as an active or a completed cart.
func (p Principal) OwnsSessionCart(orderID uuid.UUID) bool {
	for _, id := range p.ActiveCartIDs {
		if id == orderID {
			return true
		}
	}
	for _, id := range p.CompletedCartIDs {
		if id == orderID {
			return true
		}
	}
	return false
}
