// Package auth holds the primitives used to authenticate platform users: JWT
// issuing and validation, password hashing, and random code generation.
package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserLocked         = errors.New("user account is locked")
	ErrUserNotActive      = errors.New("user account is not active")
)

// TokenUser is the subset of the user record embedded in JWT claims.
type TokenUser struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	TenantID *string `json:"tenant_id,omitempty"`
}
