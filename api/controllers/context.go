package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gcommerce/groupcommerce-backend/api/middleware"
	"github.com/gcommerce/groupcommerce-backend/api/responses"
	"github.com/gcommerce/groupcommerce-backend/api/validators"
	"github.com/gcommerce/groupcommerce-backend/internal/shoppingcontext"
	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
	"github.com/gcommerce/groupcommerce-backend/pkg/logger"
)

type contextResponse struct {
	GroupID *uuid.UUID `json:"group_id"`
}

type setContextRequest struct {
	GroupID uuid.UUID `json:"group_id" validate:"required"`
}

type setDefaultContextRequest struct {
	GroupID *uuid.UUID `json:"group_id"`
}

// ContextCurrent returns the caller's current shopping context group.
func ContextCurrent(manager *shoppingcontext.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "context manager unavailable"))
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		groupID, err := manager.Current(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contextResponse{GroupID: groupID})
	}
}

// ContextSet switches the caller's current shopping context.
func ContextSet(manager *shoppingcontext.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "context manager unavailable"))
			return
		}

		var body setContextRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		if err := manager.Set(r.Context(), principal, body.GroupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		groupID := body.GroupID
		responses.WriteSuccess(w, contextResponse{GroupID: &groupID})
	}
}

// ContextClear drops the caller's current shopping context.
func ContextClear(manager *shoppingcontext.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "context manager unavailable"))
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		if err := manager.Clear(r.Context(), principal); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contextResponse{})
	}
}

// ContextDefault reads the caller's persisted default context group.
func ContextDefault(manager *shoppingcontext.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "context manager unavailable"))
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		groupID, err := manager.Default(r.Context(), principal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contextResponse{GroupID: groupID})
	}
}

// ContextSetDefault persists or clears the caller's default context group.
func ContextSetDefault(manager *shoppingcontext.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "context manager unavailable"))
			return
		}

		var body setDefaultContextRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		principal := middleware.PrincipalFromContext(r.Context())
		if err := manager.SetDefault(r.Context(), principal, body.GroupID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contextResponse{GroupID: body.GroupID})
	}
}
