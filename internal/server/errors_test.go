package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/uniadmit/internal/schemas"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "unknown staff user", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "NotFound",
			err:      types.NewNotFound("applicant", "a1"),
			expected: http.StatusNotFound,
		},
		{
			name:     "GuardViolation",
			err:      types.NewGuardViolation("submit", "application fee unpaid"),
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "CapacityExceeded",
			err:      &types.CapacityExceeded{SlotID: "slot_1"},
			expected: http.StatusConflict,
		},
		{
			name:     "VersionConflict",
			err:      &store.VersionConflict{Key: store.KeyApplicants},
			expected: http.StatusConflict,
		},
		{
			name:     "ValidationError",
			err:      &types.ValidationError{Field: "score", Message: "out of range"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "SchemaValidationError",
			err:      &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "slots", Message: "required"}}},
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrapped NotFound",
			err:      fmt.Errorf("failed to load: %w", types.NewNotFound("slot", "s1")),
			expected: http.StatusNotFound,
		},
		{
			name:     "unknown error",
			err:      errors.New("disk on fire"),
			expected: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
