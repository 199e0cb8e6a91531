// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/cliparse"
	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
	"github.com/innitec-lgtm/SupportCenter-v1/ticketlist"
)

// List views
const (
	ViewQueue = "queue"
	ViewTrack = "track"
)

type TicketHandler struct {
	store *store.Store
	cfg   cliparse.Config
	now   func() time.Time
}

func NewTicketHandler(st *store.Store, cfg cliparse.Config) *TicketHandler {
	return &TicketHandler{store: st, cfg: cfg, now: time.Now}
}

// List handles GET /api/tickets
//
// Without a view the stored collection is returned as is. view=queue sorts
// and filters for the staff queue; view=track searches for requesters.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	switch view := query.Get("view"); view {
	case "":
		data, rev, err := h.store.Tickets.Raw(r.Context())
		if err != nil {
			slog.Error("failed to encode tickets", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load tickets")
			return
		}
		middleware.SetRevision(w, rev)
		middleware.RawJSONResponse(w, http.StatusOK, data)

	case ViewQueue:
		q := ticketlist.Query{Text: query.Get("q"), Urgency: ticketlist.AllUrgencies}
		if u := query.Get("urgency"); u != "" && u != ticketlist.AllUrgencies {
			parsed, err := models.ParseUrgency(u)
			if err != nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
				return
			}
			q.Urgency = string(parsed)
		}
		tickets, rev := h.store.Tickets.Load(r.Context())
		middleware.SetRevision(w, rev)
		middleware.JSONResponse(w, http.StatusOK, ticketlist.Views(ticketlist.Apply(tickets, q), h.now()))

	case ViewTrack:
		activeOnly := false
		if v := query.Get("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, "active must be true or false")
				return
			}
			activeOnly = b
		}
		tickets, rev := h.store.Tickets.Load(r.Context())
		middleware.SetRevision(w, rev)
		middleware.JSONResponse(w, http.StatusOK, ticketlist.Views(ticketlist.Track(tickets, query.Get("q"), activeOnly), h.now()))

	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "unknown view "+strconv.Quote(view))
	}
}

// Create handles POST /api/tickets
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTicketRequest
	if !parseBody(w, r, &req) {
		return
	}

	ticket, err := h.store.CreateTicket(r.Context(), req, h.now())
	if err != nil {
		writeStoreError(w, err, "create ticket")
		return
	}

	slog.Info("ticket created", "ticket_id", ticket.ID, "department", ticket.Department, "urgency", ticket.Urgency)

	middleware.JSONResponse(w, http.StatusCreated, ticket)
}

// Get handles GET /api/tickets/{id}
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.store.GetTicket(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err, "load ticket")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, ticket)
}

// Update handles PUT /api/tickets/{id}
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req models.UpdateTicketRequest
	if !parseBody(w, r, &req) {
		return
	}

	ticket, err := h.store.UpdateTicket(r.Context(), id, req, h.now())
	if err != nil {
		writeStoreError(w, err, "update ticket")
		return
	}

	slog.Info("ticket updated", "ticket_id", ticket.ID, "status", ticket.Status, "engineer", ticket.AssignedEngineer)

	middleware.JSONResponse(w, http.StatusOK, ticket)
}

// Delete handles DELETE /api/tickets/{id}
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteTicket(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete ticket")
		return
	}

	slog.Info("ticket deleted", "ticket_id", id)

	w.WriteHeader(http.StatusNoContent)
}
