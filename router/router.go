// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/innitec-lgtm/SupportCenter-v1/cliparse"
	"github.com/innitec-lgtm/SupportCenter-v1/handlers"
	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/realtime"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

// NewMux registers every route on a fresh ServeMux
func NewMux(st *store.Store, hub *realtime.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(st, cfg)
	engineerHandler := handlers.NewEngineerHandler(st)
	contactHandler := handlers.NewContactHandler(st)
	reportHandler := handlers.NewReportHandler(st, cfg)
	metaHandler := handlers.NewMetaHandler(cfg, hub)
	syncHandler := handlers.NewSyncHandler(st, hub)

	// Health and status
	mux.HandleFunc("GET /health", metaHandler.Health)
	mux.HandleFunc("GET /status", middleware.WithLogging(metaHandler.Status))
	mux.HandleFunc("GET /api/config", middleware.WithLogging(metaHandler.Config))

	// Tickets
	mux.HandleFunc("GET /api/tickets", middleware.WithLogging(ticketHandler.List))
	mux.HandleFunc("POST /api/tickets", middleware.WithLogging(ticketHandler.Create))
	mux.HandleFunc("GET /api/tickets/{id}", middleware.WithLogging(ticketHandler.Get))
	mux.HandleFunc("PUT /api/tickets/{id}", middleware.WithLogging(ticketHandler.Update))
	mux.HandleFunc("DELETE /api/tickets/{id}", middleware.WithLogging(ticketHandler.Delete))

	// Engineers and contacts
	mux.HandleFunc("GET /api/engineers", middleware.WithLogging(engineerHandler.List))
	mux.HandleFunc("POST /api/engineers", middleware.WithLogging(engineerHandler.Replace))
	mux.HandleFunc("PUT /api/engineers/{id}", middleware.WithLogging(engineerHandler.Put))
	mux.HandleFunc("DELETE /api/engineers/{id}", middleware.WithLogging(engineerHandler.Remove))
	mux.HandleFunc("PUT /api/engineers/{id}/default", middleware.WithLogging(engineerHandler.SetDefault))
	mux.HandleFunc("GET /api/contacts", middleware.WithLogging(contactHandler.List))
	mux.HandleFunc("POST /api/contacts", middleware.WithLogging(contactHandler.Replace))
	mux.HandleFunc("GET /api/contacts/lookup", middleware.WithLogging(contactHandler.Lookup))
	mux.HandleFunc("POST /api/contacts/import", middleware.WithLogging(contactHandler.Import))

	// Reports
	mux.HandleFunc("GET /api/reports/daily", middleware.WithLogging(reportHandler.Daily))
	mux.HandleFunc("GET /api/reports/monthly", middleware.WithLogging(reportHandler.Monthly))
	mux.HandleFunc("GET /api/reports/summary", middleware.WithLogging(reportHandler.Summary))

	// Real-time sync
	mux.HandleFunc("GET /ws", middleware.WithLogging(syncHandler.Connect))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("SupportCenter API v" + handlers.AppVersion))
	})

	return mux
}

// NewRouter returns the full handler: routes behind CORS, per-IP rate
// limiting and no-cache headers
func NewRouter(st *store.Store, hub *realtime.Hub, cfg cliparse.Config) http.Handler {
	var h http.Handler = NewMux(st, hub, cfg)
	h = middleware.NoCache(h)
	h = middleware.RateLimit(cfg.RateLimit, cfg.TrustProxy)(h)
	h = middleware.CORS(cfg.AllowedOrigins)(h)
	return h
}
