package auth

import (
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Guest sessions have a nil UserID and carry the cart IDs created during
// the session so ownership checks keep working without an account.
type AccessTokenPayload struct {
	UserID           *uuid.UUID
	Role             enums.SystemRole
	SessionCartIDs   []uuid.UUID
	CompletedCartIDs []uuid.UUID
	JTI              string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID           *uuid.UUID       `json:"user_id,omitempty"`
	Role             enums.SystemRole `json:"role"`
	SessionCartIDs   []uuid.UUID      `json:"session_cart_ids,omitempty"`
	CompletedCartIDs []uuid.UUID      `json:"completed_cart_ids,omitempty"`
	jwt.RegisteredClaims
}

// IsAnonymous reports whether the token belongs to a guest session.
func (c *AccessTokenClaims) IsAnonymous() bool {
	return c.UserID == nil
}
