package errors

import (
	"fmt"
	"testing"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation},
		{"not found", fmt.Errorf("lookup: %w", NewNotFoundError("missing")), ErrorTypeNotFound},
		{"conflict", fmt.Errorf("a: %w", fmt.Errorf("b: %w", NewConflictError("dup"))), ErrorTypeConflict},
		{"unavailable", NewUnavailableError("offline"), ErrorTypeUnavailable},
		{"plain error", fmt.Errorf("boom"), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeOf(tt.err); got != tt.want {
				t.Errorf("TypeOf(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewValidationErrorf(t *testing.T) {
	err := NewValidationErrorf("page %d out of range", 7)
	if err.Error() != "page 7 out of range" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !IsValidationError(err) {
		t.Fatalf("expected validation error")
	}
}
