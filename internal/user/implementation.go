package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"itemdesk/internal/apperr"
)

const minPasswordLength = 8

// service implements the Service interface.
type service struct {
	store Store
}

// NewService creates a new user service instance.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "name must not be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(apperr.Validation, "email is not a valid address")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Newf(apperr.Validation, "password must be at least %d characters", minPasswordLength)
	}

	hash, salt, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hash password", err)
	}

	now := time.Now().UTC()
	u := User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Insert(ctx, u, hash, salt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]User, error) {
	return s.store.FindAll(ctx)
}

func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, current, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperr.Newf(apperr.Validation, "password must be at least %d characters", minPasswordLength)
	}

	creds, err := s.store.CredentialsByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := VerifyPassword(current, creds.Salt, creds.PasswordHash)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "verify password", err)
	}
	if !ok {
		return apperr.New(apperr.Forbidden, "current password is incorrect")
	}

	hash, salt, err := HashPassword(newPassword)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "hash password", err)
	}
	return s.store.UpdatePassword(ctx, id, hash, salt)
}

func (s *service) ChangeName(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return apperr.New(apperr.Validation, "name must not be empty")
	}
	return s.store.UpdateName(ctx, id, name)
}

func (s *service) ChangeEmail(ctx context.Context, id uuid.UUID, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.New(apperr.Validation, "email is not a valid address")
	}
	return s.store.UpdateEmail(ctx, id, email)
}

func (s *service) ChangeRole(ctx context.Context, id uuid.UUID, role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	return s.store.UpdateRole(ctx, id, role)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *service) CredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	return s.store.CredentialsByEmail(ctx, email)
}
