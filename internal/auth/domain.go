package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates access levels.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleViewer:
		return true
	}
	return false
}

// User represents an authenticated user account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"nome"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"ativo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// Principal is the identity attached to an authenticated request.
type Principal struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"nome"`
	Role   Role      `json:"role"`
}

// IsAdmin reports whether the principal can perform administrative operations.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
