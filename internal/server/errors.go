// Package server provides the HTTP/JSON API over the admission service.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/uniadmit/internal/schemas"
	"github.com/jonathan/uniadmit/internal/store"
	"github.com/jonathan/uniadmit/internal/types"
)

// ErrInvalidCredentials reports a staff login for an unknown user.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "unknown staff user"
}

// HTTPStatus returns the HTTP status code for an error returned by the admission service.
func HTTPStatus(err error) int {
	var (
		notFound    *types.NotFound
		guard       *types.GuardViolation
		capacity    *types.CapacityExceeded
		invariant   *types.InvariantViolation
		invalid     *types.ValidationError
		schemaErr   *schemas.ValidationError
		conflict    *store.VersionConflict
		credentials *ErrInvalidCredentials
	)
	switch {
	case errors.As(err, &credentials):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &guard):
		return http.StatusUnprocessableEntity
	case errors.As(err, &capacity), errors.As(err, &invariant), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
