package user

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"itemdesk/internal/apperr"
	"itemdesk/internal/web"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandleRegister creates a new account. Admin only.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	u, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, web.Envelope{"user": u})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"users": users})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		web.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"user": u})
}

// HandleMe returns the authenticated caller's own account.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"user": u})
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, nil)
}

func (h *Handler) HandleChangeName(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	if err := h.service.ChangeName(r.Context(), u.ID, req.Name); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, nil)
}

func (h *Handler) HandleChangeEmail(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	if err := h.service.ChangeEmail(r.Context(), u.ID, req.Email); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, nil)
}

// HandleChangeRole promotes or demotes an account. Admin only.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		web.BadRequest(w, "invalid user id")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	role, err := ParseRole(req.Role)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	if err := h.service.ChangeRole(r.Context(), id, role); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, nil)
}

// HandleDelete removes an account. Admin only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		web.BadRequest(w, "invalid user id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusNoContent, nil)
}
