package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping. Every code carries
// Metadata that decides its HTTP status and how much detail leaves the
// process.
type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeNotFound             Code = "NOT_FOUND"
	CodeConflict             Code = "CONFLICT"
	CodeStateConflict        Code = "STATE_CONFLICT"
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	CodeIdempotency          Code = "IDEMPOTENCY_ERROR"
	CodeRateLimit            Code = "RATE_LIMITED"
	CodeInternal             Code = "INTERNAL_ERROR"
	CodeDependency           Code = "DEPENDENCY_ERROR"
)

// Metadata drives the response writer. DetailsAllowed gates whether an
// error's structured details may be serialized to the client.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:           {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized:         {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:            {http.StatusForbidden, false, "access denied", false},
	CodeNotFound:             {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:             {http.StatusConflict, false, "conflict detected", false},
	CodeStateConflict:        {http.StatusUnprocessableEntity, false, "state transition disallowed", true},
	CodeInvalidConfiguration: {http.StatusInternalServerError, false, "invalid configuration", true},
	CodeIdempotency:          {http.StatusConflict, false, "idempotency key conflict", true},
	CodeRateLimit:            {http.StatusTooManyRequests, true, "too many requests", false},
	CodeInternal:             {http.StatusInternalServerError, true, "internal server error", false},
	CodeDependency:           {http.StatusServiceUnavailable, true, "dependency unavailable", true},
}

// MetadataFor returns the transport metadata for a code. Unknown codes
// map to CodeInternal so a missed registration fails closed.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the platform error type. The zero-value receiver is safe so
// call sites may chain off a nil without guarding.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying cause. The cause
// stays reachable through errors.Is and errors.As.
func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

// WithDetails attaches structured context to the error. Whether the
// details reach the client depends on the code's metadata.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts the typed error from anywhere in the chain, or nil when
// the chain carries none.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
