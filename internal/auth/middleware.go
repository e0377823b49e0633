package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"itemdesk/internal/apperr"
	"itemdesk/internal/user"
	"itemdesk/internal/web"
)

// UserLoader resolves a user id to the current account record.
type UserLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Authenticator is the bearer-token middleware. It verifies the token, loads
// the user row, and stashes it in the request context so handlers see the
// current role rather than the one baked into the token.
type Authenticator struct {
	tokens *TokenIssuer
	users  UserLoader
	logger *slog.Logger
}

func NewAuthenticator(tokens *TokenIssuer, users UserLoader, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// RequireUser rejects requests without a valid bearer token.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			web.Error(a.logger, w, r, err)
			return
		}

		userID, err := a.tokens.Verify(token)
		if err != nil {
			web.Error(a.logger, w, r, err)
			return
		}

		u, err := a.users.Get(r.Context(), userID)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				err = apperr.New(apperr.Unauthenticated, "account no longer exists")
			}
			web.Error(a.logger, w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
	})
}

// RequireAdmin rejects authenticated requests from non-admin users. It must
// be mounted inside RequireUser.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := user.FromContext(r.Context())
		if !ok || !u.Role.IsAdmin() {
			web.Error(a.logger, w, r, apperr.New(apperr.Forbidden, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", apperr.New(apperr.Unauthenticated, "missing authorization header")
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", apperr.New(apperr.Unauthenticated, "authorization header is not a bearer token")
	}
	token := strings.TrimSpace(header[len("bearer "):])
	if token == "" {
		return "", apperr.New(apperr.Unauthenticated, "missing token")
	}
	return token, nil
}
