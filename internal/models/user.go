package models

import "time"

// user roles
const (
	RoleBuyer  = "buyer"
	RoleVendor = "vendor"
	RoleRunner = "runner"
)

// User is user entity
type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// TokenPayload is authorization token payload
type TokenPayload struct {
	UserID string
	Role   string
}

// Actor is the authenticated principal performing an operation
type Actor struct {
	UserID string
	Role   string
}

// IsValidRole reports whether r is one of the three marketplace roles.
func IsValidRole(r string) bool {
	return r == RoleBuyer || r == RoleVendor || r == RoleRunner
}
