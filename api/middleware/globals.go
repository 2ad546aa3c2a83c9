package middleware

import (
	"context"

	"github.com/gcommerce/groupcommerce-backend/internal/groups"
	"github.com/gcommerce/groupcommerce-backend/pkg/access"
	"github.com/gcommerce/groupcommerce-backend/pkg/enums"
)

// GlobalPermissionEvaluator answers site-wide permission checks using the
// system role the Auth middleware stored on the request context. Requests
// without a recognizable role are treated as customers when authenticated
// and as anonymous otherwise.
type GlobalPermissionEvaluator struct {
	groups groups.Service
}

func NewGlobalPermissionEvaluator(svc groups.Service) *GlobalPermissionEvaluator {
	return &GlobalPermissionEvaluator{groups: svc}
}

func (e *GlobalPermissionEvaluator) HasGlobalPermission(ctx context.Context, principal access.Principal, permission string) (bool, error) {
	role := enums.SystemRole(RoleFromContext(ctx))
	if !role.IsValid() {
		if principal.Authenticated {
			role = enums.SystemRoleCustomer
		} else {
			role = enums.SystemRoleAnonymous
		}
	}
	return e.groups.HasGlobalPermission(ctx, principal, role, permission)
}
