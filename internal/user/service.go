package user

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for user account management.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	List(ctx context.Context) ([]User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) error
	ChangeName(ctx context.Context, id uuid.UUID, name string) error
	ChangeEmail(ctx context.Context, id uuid.UUID, email string) error
	ChangeRole(ctx context.Context, id uuid.UUID, role Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	CredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
}

// Store is the persistence surface the service runs against.
type Store interface {
	Insert(ctx context.Context, u User, hash, salt string) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	CredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	CredentialsByID(ctx context.Context, id uuid.UUID) (*Credentials, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt string) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}
