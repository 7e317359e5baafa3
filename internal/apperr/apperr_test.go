package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindInvalidInput, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindInvalidState, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.HTTPStatus(); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("register: %w", Conflict("already registered"))
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", KindOf(err))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatal("expected plain errors to classify as internal")
	}
}

func TestErrorUnwrapAndIs(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("load event", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if !errors.Is(err, Internal("load event", nil)) {
		t.Fatal("expected match by kind and message")
	}
	if err.Error() != "load event: connection reset" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
