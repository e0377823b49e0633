package circulation

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"itemdesk/internal/apperr"
	"itemdesk/internal/user"
	"itemdesk/internal/web"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandleCheckout creates an active checkout for the authenticated user.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		web.BadRequest(w, "invalid item id")
		return
	}
	u, ok := user.FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}

	co, err := h.service.Checkout(r.Context(), CreateCheckout{
		ItemID:       itemID,
		CheckedOutBy: u.ID,
		CheckedOutAt: time.Now().UTC(),
	})
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, web.Envelope{"checkout": co})
}

// HandleReturn marks a checkout as returned.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		web.BadRequest(w, "invalid item id")
		return
	}
	checkoutID, err := uuid.Parse(chi.URLParam(r, "checkoutID"))
	if err != nil {
		web.BadRequest(w, "invalid checkout id")
		return
	}
	u, ok := user.FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}

	err = h.service.Return(r.Context(), ReturnCheckout{
		CheckoutID:     checkoutID,
		ItemID:         itemID,
		ReturnedBy:     u.ID,
		ReturnedByRole: u.Role,
		ReturnedAt:     time.Now().UTC(),
	})
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, nil)
}

// HandleListActive lists all active checkouts.
func (h *Handler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	checkouts, err := h.service.ListActive(r.Context())
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"items": checkouts})
}

// HandleListMine lists the authenticated user's active checkouts.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	u, ok := user.FromContext(r.Context())
	if !ok {
		web.Error(h.logger, w, r, apperr.New(apperr.Unauthenticated, "authentication required"))
		return
	}
	checkouts, err := h.service.ListActiveForUser(r.Context(), u.ID)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"items": checkouts})
}

// HandleHistory returns an item's checkout timeline.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		web.BadRequest(w, "invalid item id")
		return
	}
	history, err := h.service.HistoryForItem(r.Context(), itemID)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"items": history})
}
