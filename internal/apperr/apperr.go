// Package apperr defines the error kinds shared by all services. Handlers
// map kinds to HTTP statuses; services never see status codes.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Internal is the zero kind: anything we did not classify.
	Internal Kind = iota
	NotFound
	Conflict
	Forbidden
	Unauthenticated
	Validation
	// WriteFailed marks a write that affected zero rows when it should not
	// have. It means a concurrent mutation slipped past the transaction
	// isolation, or a logic bug. Always treated as internal.
	WriteFailed
	// TransactionFailed marks a transaction aborted by the store, e.g. a
	// serialization conflict. Callers that want retries own the retry.
	TransactionFailed
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Unauthenticated:
		return "unauthenticated"
	case Validation:
		return "validation"
	case WriteFailed:
		return "write_failed"
	case TransactionFailed:
		return "transaction_failed"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-facing message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a client-facing message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or Internal if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-safe message for err. Internal kinds get an
// opaque message so database and logic details never leak to clients.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case NotFound, Conflict, Forbidden, Unauthenticated, Validation:
			return e.Msg
		}
	}
	return "the server encountered a problem and could not process your request"
}

// IsClientError reports whether err should be surfaced as a 4xx.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case NotFound, Conflict, Forbidden, Unauthenticated, Validation:
		return true
	}
	return false
}
