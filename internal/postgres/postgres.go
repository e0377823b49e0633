// Package postgres holds the shared database plumbing: pool construction,
// schema bootstrap, the serializable transaction runner, and translation of
// driver errors into application error kinds.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"itemdesk/internal/apperr"
)

//go:embed schema.sql
var schema string

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "open database", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.Internal, "ping database", err)
	}

	return db, nil
}

// Migrate applies the schema. All statements are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return apperr.Wrap(apperr.Internal, "apply schema", err)
	}
	return nil
}

// InSerializableTx runs fn inside a transaction at the serializable isolation
// level, set explicitly per transaction rather than relying on a server
// default. The check-then-act sequences in the checkout protocol are only
// safe at this level; under read committed two racing checkouts can both
// observe a free item and both insert.
//
// The transaction is rolled back on any error from fn, so no failure path
// leaves partial state. Serialization conflicts (which Postgres may report at
// commit) surface as TransactionFailed; this layer never retries.
func InSerializableTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return apperr.Wrap(apperr.TransactionFailed, "begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return Translate(err)
	}
	return nil
}

// Postgres error codes this service cares about.
const (
	codeSerializationFailure = "40001"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
)

// Translate maps driver errors onto application error kinds. Errors that are
// already classified pass through untouched.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure:
			return apperr.Wrap(apperr.TransactionFailed, "transaction aborted by a concurrent conflict", err)
		case codeUniqueViolation:
			return apperr.Wrap(apperr.Conflict, "resource already exists", err)
		case codeForeignKeyViolation:
			return apperr.Wrap(apperr.Conflict, "resource is referenced by other records", err)
		}
	}

	return apperr.Wrap(apperr.Internal, "database operation failed", err)
}
