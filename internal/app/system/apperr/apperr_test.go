package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("socket closed")
	wrapped := fmt.Errorf("saving user: %w", Wrap(StoreUnavailable, "Database unavailable", cause))

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("boom"), KindUnknown},
		{"direct", New(InvalidInput, "bad"), InvalidInput},
		{"wrapped twice", wrapped, StoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}

	if !errors.Is(wrapped, cause) {
		t.Error("expected wrapped error to unwrap to its cause")
	}
}

func TestMessage_HidesUnclassifiedErrors(t *testing.T) {
	if got := Message(errors.New("E11000 duplicate key on users.email")); got != "Internal server error" {
		t.Errorf("Message() = %q, want generic text", got)
	}
	if got := Message(New(DuplicateEmail, "User with this email already exists")); got != "User with this email already exists" {
		t.Errorf("Message() = %q", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{InvalidInput, http.StatusBadRequest},
		{DuplicateEmail, http.StatusConflict},
		{InvalidCredentials, http.StatusUnauthorized},
		{Unauthorized, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
		{RateLimited, http.StatusTooManyRequests},
		{StoreUnavailable, http.StatusServiceUnavailable},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := Status(tt.kind); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
