package pkg

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		e := NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
		if e.Error() != "INVALID_REQUEST: Invalid request" {
			t.Fatalf("unexpected message: %s", e.Error())
		}
		if e.Unwrap() != nil {
			t.Fatalf("expected nil cause")
		}
		body := e.ToHTTPError()
		if body.Code != "INVALID_REQUEST" || body.Message != "Invalid request" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("db down")
		e := NewDomainError("PERSISTENCE_ERROR", "Persistence error", cause, http.StatusInternalServerError)
		if !errors.Is(e, cause) {
			t.Fatalf("expected cause to be unwrapped")
		}
		if e.HTTPStatus != http.StatusInternalServerError {
			t.Fatalf("unexpected status %d", e.HTTPStatus)
		}
		if e.ToHTTPError().Message != "Persistence error" {
			t.Fatalf("cause must not leak into the body")
		}
	})
}
