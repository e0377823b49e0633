package user

import (
	"time"

	"github.com/google/uuid"

	"itemdesk/internal/apperr"
)

// Role controls authorization. Admins may manage users and return any
// checkout; regular users act only on their own records.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", apperr.Newf(apperr.Validation, "unknown role %q", s)
	}
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User is an account that can check out items.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials is the stored login material for a user.
type Credentials struct {
	UserID       uuid.UUID
	PasswordHash string
	Salt         string
}
