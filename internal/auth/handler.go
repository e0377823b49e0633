package auth

import (
	"log/slog"
	"net/http"

	"itemdesk/internal/apperr"
	"itemdesk/internal/user"
	"itemdesk/internal/web"
)

// Handler serves the login endpoint.
type Handler struct {
	users  user.Service
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewHandler(users user.Service, tokens *TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger}
}

// HandleLogin verifies email+password and responds with an access token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	creds, err := h.users.CredentialsByEmail(r.Context(), req.Email)
	if err != nil {
		// A missing account and a bad password are indistinguishable to the
		// caller.
		if apperr.KindOf(err) == apperr.NotFound {
			err = apperr.New(apperr.Unauthenticated, "invalid email or password")
		}
		web.Error(h.logger, w, r, err)
		return
	}

	ok, err := user.VerifyPassword(req.Password, creds.Salt, creds.PasswordHash)
	if err != nil {
		web.Error(h.logger, w, r, apperr.Wrap(apperr.Internal, "verify password", err))
		return
	}
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "invalid email or password"))
		return
	}

	u, err := h.users.Get(r.Context(), creds.UserID)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Role)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	web.Respond(w, http.StatusOK, web.Envelope{
		"userId":      u.ID,
		"accessToken": token,
	})
}
