package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"itemdesk/internal/web"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// itemRequest is the write DTO shared by create and update.
type itemRequest struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Author      string `json:"author,omitempty"`
	ISBN        string `json:"isbn,omitempty"`
	MACAddress  string `json:"macAddress,omitempty"`
}

func (req itemRequest) fields() ItemFields {
	return ItemFields{
		Category:    Category(req.Category),
		Name:        req.Name,
		Description: req.Description,
		Author:      req.Author,
		ISBN:        req.ISBN,
		MACAddress:  req.MACAddress,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	item, err := h.service.Create(r.Context(), req.fields())
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusCreated, web.Envelope{"item": item})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	opts := ListOptions{
		Limit:  readInt64(qs.Get("limit"), 0),
		Offset: readInt64(qs.Get("offset"), 0),
	}
	if c := qs.Get("category"); c != "" {
		category, err := ParseCategory(c)
		if err != nil {
			web.Error(h.logger, w, r, err)
			return
		}
		opts.Category = &category
	}

	page, err := h.service.List(r.Context(), opts)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{
		"items":  page.Items,
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		web.BadRequest(w, "invalid item id")
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, web.Envelope{"item": item})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		web.BadRequest(w, "invalid item id")
		return
	}

	var req itemRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), id, req.fields()); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusOK, nil)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		web.BadRequest(w, "invalid item id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		web.Error(h.logger, w, r, err)
		return
	}
	web.Respond(w, http.StatusNoContent, nil)
}

func readInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}
