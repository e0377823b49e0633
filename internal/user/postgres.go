package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"itemdesk/internal/apperr"
	"itemdesk/internal/postgres"
)

// PostgresStore implements Store on top of the shared pool.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type userRow struct {
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) toUser() User {
	return User{
		ID:        r.UserID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      Role(r.Role),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *PostgresStore) Insert(ctx context.Context, u User, hash, salt string) error {
	const q = `
		INSERT INTO users (user_id, name, email, password_hash, password_salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	res, err := s.db.ExecContext(ctx, q, u.ID, u.Name, u.Email, hash, salt, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return postgres.Translate(err)
	}
	if n, _ := res.RowsAffected(); n < 1 {
		return apperr.New(apperr.WriteFailed, "no user record was created")
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const q = `
		SELECT user_id, name, email, role, created_at, updated_at
		FROM users
		WHERE user_id = $1`
	var row userRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "user %s not found", id)
		}
		return nil, postgres.Translate(err)
	}
	u := row.toUser()
	return &u, nil
}

func (s *PostgresStore) FindAll(ctx context.Context) ([]User, error) {
	const q = `
		SELECT user_id, name, email, role, created_at, updated_at
		FROM users
		ORDER BY created_at DESC`
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, postgres.Translate(err)
	}
	users := make([]User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toUser())
	}
	return users, nil
}

func (s *PostgresStore) CredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	const q = `
		SELECT user_id, password_hash, password_salt
		FROM users
		WHERE email = $1`
	return s.credentials(ctx, q, email)
}

func (s *PostgresStore) CredentialsByID(ctx context.Context, id uuid.UUID) (*Credentials, error) {
	const q = `
		SELECT user_id, password_hash, password_salt
		FROM users
		WHERE user_id = $1`
	return s.credentials(ctx, q, id)
}

func (s *PostgresStore) credentials(ctx context.Context, query string, arg any) (*Credentials, error) {
	var row struct {
		UserID       uuid.UUID `db:"user_id"`
		PasswordHash string    `db:"password_hash"`
		PasswordSalt string    `db:"password_salt"`
	}
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, postgres.Translate(err)
	}
	return &Credentials{UserID: row.UserID, PasswordHash: row.PasswordHash, Salt: row.PasswordSalt}, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash, salt string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, password_salt = $3, updated_at = now()
		WHERE user_id = $1`
	return s.exec(ctx, q, id, hash, salt)
}

func (s *PostgresStore) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	const q = `
		UPDATE users
		SET name = $2, updated_at = now()
		WHERE user_id = $1`
	return s.exec(ctx, q, id, name)
}

func (s *PostgresStore) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	const q = `
		UPDATE users
		SET email = $2, updated_at = now()
		WHERE user_id = $1`
	return s.exec(ctx, q, id, email)
}

func (s *PostgresStore) UpdateRole(ctx context.Context, id uuid.UUID, role Role) error {
	const q = `
		UPDATE users
		SET role = $2, updated_at = now()
		WHERE user_id = $1`
	return s.exec(ctx, q, id, string(role))
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM users WHERE user_id = $1`
	return s.exec(ctx, q, id)
}

// exec runs a single-row mutation and maps "zero rows affected" to NotFound.
func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return postgres.Translate(err)
	}
	if n, _ := res.RowsAffected(); n < 1 {
		return apperr.New(apperr.NotFound, "specified user not found")
	}
	return nil
}
