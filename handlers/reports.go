// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/cliparse"
	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/reports"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

type ReportHandler struct {
	store *store.Store
	loc   *time.Location
	now   func() time.Time
}

func NewReportHandler(st *store.Store, cfg cliparse.Config) *ReportHandler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{store: st, loc: loc, now: time.Now}
}

// Daily handles GET /api/reports/daily?date=YYYY-MM-DD (default today)
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.loc)
	if s := r.URL.Query().Get("date"); s != "" {
		parsed, err := reports.ParseDay(s, h.loc)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	tickets, _ := h.store.Tickets.Load(r.Context())
	middleware.JSONResponse(w, http.StatusOK, reports.Daily(tickets, day, h.loc))
}

// Monthly handles GET /api/reports/monthly?month=YYYY-MM (default this month)
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.loc)
	year, month := now.Year(), now.Month()
	if s := r.URL.Query().Get("month"); s != "" {
		var err error
		year, month, err = reports.ParseMonth(s)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
	}

	tickets, _ := h.store.Tickets.Load(r.Context())
	middleware.JSONResponse(w, http.StatusOK, reports.Monthly(tickets, year, month, h.loc))
}

// Summary handles GET /api/reports/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	tickets, _ := h.store.Tickets.Load(r.Context())
	middleware.JSONResponse(w, http.StatusOK, reports.Summarize(tickets, h.now(), h.loc))
}
