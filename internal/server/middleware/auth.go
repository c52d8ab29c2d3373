// Package middleware provides HTTP middleware for staff authentication and role checks.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/jonathan/uniadmit/internal/types"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const staffKey ContextKey = "staff"

// StaffClaims exposes the identity carried by a validated token.
type StaffClaims interface {
	GetStaffID() string
	GetRole() types.StaffRole
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (StaffClaims, error)
}

// Staff is the authenticated staff member of a request.
type Staff struct {
	ID   string
	Role types.StaffRole
}

func bearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// staff identity in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			staff := Staff{ID: claims.GetStaffID(), Role: claims.GetRole()}
			if staff.ID == "" || !staff.Role.Valid() {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), staff)))
		})
	}
}

// RequireRole allows only the listed roles through. It must run inside AuthMiddleware.
func RequireRole(roles ...types.StaffRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staff, err := GetStaff(r)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, staff.Role) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithStaff returns a context carrying staff.
func WithStaff(ctx context.Context, staff Staff) context.Context {
	return context.WithValue(ctx, staffKey, staff)
}

// GetStaff extracts the authenticated staff member from the request context.
func GetStaff(r *http.Request) (Staff, error) {
	staff, ok := r.Context().Value(staffKey).(Staff)
	if !ok {
		return Staff{}, fmt.Errorf("staff not found in request context")
	}
	return staff, nil
}
