package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindInvalidCredentials, http.StatusUnauthorized},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindUnavailable, http.StatusServiceUnavailable},
		{Kind(0), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("Kind(%d).Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestAsThroughWrapping(t *testing.T) {
	sentinel := New(KindConflict, "username already taken")
	err := fmt.Errorf("signup: %w", sentinel)

	got, ok := As(err)
	if !ok {
		t.Fatal("As() did not find operational error in chain")
	}
	if got != sentinel {
		t.Errorf("As() = %v, want sentinel", got)
	}
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() should match the sentinel through wrapping")
	}
	if !IsKind(err, KindConflict) {
		t.Error("IsKind() should report KindConflict")
	}
	if IsKind(errors.New("boom"), KindConflict) {
		t.Error("IsKind() should be false for plain errors")
	}
}

func TestWrapHidesCauseFromMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(KindUnavailable, "image storage unavailable", cause)

	if err.Message != "image storage unavailable" {
		t.Errorf("Message = %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should keep the cause in the chain")
	}
}
