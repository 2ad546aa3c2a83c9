package middleware

import (
	"context"

	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	pkgAuth "github.com/gcommerce/groupcommerce-backend/pkg/auth"
)

type contextKey string

const (
	ctxClaims contextKey = "claims"
	ctxRole   contextKey = "actor_role"
)

// ClaimsFromContext returns the verified token claims, or nil when the
// request was not authenticated.
func ClaimsFromContext(ctx context.Context) *pkgAuth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgAuth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// PrincipalFromContext derives the access principal for the request. Guest
// sessions yield an unauthenticated principal carrying the session's cart IDs.
func PrincipalFromContext(ctx context.Context) access.Principal {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return access.Principal{}
	}
	if claims.UserID == nil {
		return access.AnonymousPrincipal(claims.SessionCartIDs, claims.CompletedCartIDs)
	}
	return access.AuthenticatedPrincipal(*claims.UserID)
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithClaims injects verified claims into the context.
func WithClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxClaims, claims)
	if claims != nil {
		ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
	}
	return ctx
}
