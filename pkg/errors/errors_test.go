package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code      Code
		status    int
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized},
		{code: CodeForbidden, status: http.StatusForbidden},
		{code: CodeNotFound, status: http.StatusNotFound},
		{code: CodeConflict, status: http.StatusConflict},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, detailsOK: true},
		{code: CodeInvalidConfiguration, status: http.StatusInternalServerError, detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()

			meta := MetadataFor(tt.code)
			if meta.HTTPStatus != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, meta.HTTPStatus)
			}
			if meta.Retryable != tt.retryable {
				t.Fatalf("expected retryable %v, got %v", tt.retryable, meta.Retryable)
			}
			if meta.DetailsAllowed != tt.detailsOK {
				t.Fatalf("expected details allowed %v, got %v", tt.detailsOK, meta.DetailsAllowed)
			}
			if meta.PublicMessage == "" {
				t.Fatal("every known code needs a public message")
			}
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	t.Parallel()

	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
	if meta.DetailsAllowed {
		t.Fatal("unknown codes must not leak details")
	}
}

func TestNewAndWithDetails(t *testing.T) {
	t.Parallel()

	err := New(CodeValidation, "missing bundle")
	if err.Code() != CodeValidation || err.Message() != "missing bundle" {
		t.Fatalf("unexpected error: code=%s msg=%q", err.Code(), err.Message())
	}
	if err.Details() != nil {
		t.Fatal("details should start nil")
	}

	err.WithDetails(map[string]any{"field": "bundle"})
	if err.Details() == nil {
		t.Fatal("WithDetails should persist")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("connection refused")
	wrapped := Wrap(CodeDependency, cause, "loading grants")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatal("wrapped error should match its cause with errors.Is")
	}
	if wrapped.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAs(t *testing.T) {
	t.Parallel()

	if As(nil) != nil {
		t.Fatal("As(nil) should be nil")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("As should be nil for untyped errors")
	}

	typed := New(CodeForbidden, "no entry")
	got := As(Wrap(CodeInternal, typed, "outer"))
	if got == nil {
		t.Fatal("As should unwrap to the typed error")
	}
}

func TestNilTypedErrorCode(t *testing.T) {
	t.Parallel()

	var typed *Error
	if typed.Code() != CodeInternal {
		t.Fatalf("nil error should report internal code, got %s", typed.Code())
	}
}
