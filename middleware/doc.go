// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start at debug level and completion (status, duration_ms) at
info. The wrapped writer still supports Hijack, so the WebSocket endpoint
can be logged too.

# Cross-Cutting Middleware

	handler := middleware.CORS(cfg.AllowedOrigins)(
		middleware.RateLimit(cfg.RateLimit, cfg.TrustProxy)(
			middleware.NoCache(mux)))

CORS is backed by go-chi/cors and exposes ETag. RateLimit is a per-IP
sliding window from go-chi/httprate; zero disables it. It keys on the
connection address; forwarding headers are honored only with TrustProxy. NoCache keeps
browsers and proxies from serving stale collections.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.RawJSONResponse(w, http.StatusOK, doc)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.CreateTicketRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies are capped at MaxBodyBytes.

# Revisions

Collection reads carry an ETag with the in-process revision:

	middleware.SetRevision(w, rev)

and whole-collection replaces may be made conditional:

	expected, err := middleware.IfMatch(r) // nil when absent or "*"

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Checks X-Forwarded-For, X-Real-IP, then RemoteAddr. Used in request and
connection logs.
*/
package middleware
