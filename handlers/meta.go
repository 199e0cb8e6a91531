// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/cliparse"
	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

// AppVersion is reported by /status and /api/config
const AppVersion = "2.6.0"

// ClientCounter reports connected real-time clients
type ClientCounter interface {
	ClientCount() int
}

type MetaHandler struct {
	cfg     cliparse.Config
	clients ClientCounter
	now     func() time.Time
}

func NewMetaHandler(cfg cliparse.Config, clients ClientCounter) *MetaHandler {
	return &MetaHandler{cfg: cfg, clients: clients, now: time.Now}
}

// Health handles GET /health
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// Config handles GET /api/config
func (h *MetaHandler) Config(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.AppConfig{
		AppURL:       h.cfg.AppURL,
		SharedAppURL: h.cfg.SharedAppURL,
		Version:      AppVersion,
		KVEnabled:    h.cfg.KVEnabled(),
		Env:          h.cfg.Env,
		Timestamp:    h.now().UnixMilli(),
	})
}

// Status handles GET /status
func (h *MetaHandler) Status(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if h.clients != nil {
		clients = h.clients.ClientCount()
	}
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{
		Status:    "ok",
		Version:   AppVersion,
		KVEnabled: h.cfg.KVEnabled(),
		Clients:   clients,
		Time:      h.now().UTC(),
	})
}
