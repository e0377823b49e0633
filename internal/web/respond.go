// Package web holds the HTTP plumbing shared by all handlers: JSON
// envelope helpers, error-to-status mapping, and router middleware.
package web

import (
	"io"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"itemdesk/internal/apperr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope is the top-level JSON wrapper used for all response bodies,
// e.g. {"item": {...}} or {"items": [...], "total": 42}.
type Envelope map[string]any

const maxBodyBytes = 1 << 20

// Respond writes data as JSON with the given status. A nil data writes just
// the status code.
func Respond(w http.ResponseWriter, status int, data any) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck // response is already committed
}

// Decode reads the request body into dst, enforcing a size cap.
func Decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperr.Wrap(apperr.Validation, "unable to read request body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Wrap(apperr.Validation, "request body is not valid JSON", err)
	}
	return nil
}

// Error maps an application error onto an HTTP response. Client errors carry
// their message; anything internal is logged in full and reported opaquely.
func Error(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("request_method", r.Method),
			slog.String("request_url", r.URL.String()),
			slog.String("kind", apperr.KindOf(err).String()),
			slog.Any("error", err),
		)
	}
	Respond(w, status, Envelope{"error": apperr.Message(err)})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Validation:
		return http.StatusUnprocessableEntity
	default:
		// WriteFailed, TransactionFailed and unclassified errors are all
		// internal: no detail reaches the client.
		return http.StatusInternalServerError
	}
}

// BadRequest is a shorthand for malformed path parameters.
func BadRequest(w http.ResponseWriter, msg string) {
	Respond(w, http.StatusBadRequest, Envelope{"error": msg})
}
