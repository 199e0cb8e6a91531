// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

type EngineerHandler struct {
	store *store.Store
}

func NewEngineerHandler(st *store.Store) *EngineerHandler {
	return &EngineerHandler{store: st}
}

// List handles GET /api/engineers
func (h *EngineerHandler) List(w http.ResponseWriter, r *http.Request) {
	data, rev, err := h.store.Engineers.Raw(r.Context())
	if err != nil {
		slog.Error("failed to encode engineers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load engineers")
		return
	}
	middleware.SetRevision(w, rev)
	middleware.RawJSONResponse(w, http.StatusOK, data)
}

// Replace handles POST /api/engineers. The legacy array form is accepted.
func (h *EngineerHandler) Replace(w http.ResponseWriter, r *http.Request) {
	expected, ok := precondition(w, r)
	if !ok {
		return
	}

	var roster models.EngineerRoster
	if !parseBody(w, r, &roster) {
		return
	}

	rev, err := h.store.ReplaceEngineers(r.Context(), roster, expected)
	if err != nil {
		writeStoreError(w, err, "save engineers")
		return
	}

	slog.Info("engineers replaced", "count", len(roster.Engineers), "revision", rev)

	saved, _ := h.store.Engineers.Load(r.Context())
	middleware.SetRevision(w, rev)
	middleware.JSONResponse(w, http.StatusOK, saved)
}

type putEngineerRequest struct {
	Name string `json:"name"`
}

// Put handles PUT /api/engineers/{id}: add, or rename an existing engineer
func (h *EngineerHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req putEngineerRequest
	if !parseBody(w, r, &req) {
		return
	}
	roster, rev, err := h.store.PutEngineer(r.Context(), models.Engineer{ID: r.PathValue("id"), Name: req.Name})
	h.respond(w, roster, rev, err, "save engineer")
}

// Remove handles DELETE /api/engineers/{id}
func (h *EngineerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	roster, rev, err := h.store.RemoveEngineer(r.Context(), r.PathValue("id"))
	h.respond(w, roster, rev, err, "remove engineer")
}

// SetDefault handles PUT /api/engineers/{id}/default
func (h *EngineerHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	roster, rev, err := h.store.SetDefaultEngineer(r.Context(), r.PathValue("id"))
	h.respond(w, roster, rev, err, "set default engineer")
}

func (h *EngineerHandler) respond(w http.ResponseWriter, roster models.EngineerRoster, rev uint64, err error, action string) {
	if err != nil {
		writeStoreError(w, err, action)
		return
	}
	slog.Info("engineers updated", "count", len(roster.Engineers), "default", roster.DefaultName(), "revision", rev)
	middleware.SetRevision(w, rev)
	middleware.JSONResponse(w, http.StatusOK, roster)
}
