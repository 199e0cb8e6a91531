// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/realtime"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

type SyncHandler struct {
	store *store.Store
	hub   *realtime.Hub
}

func NewSyncHandler(st *store.Store, hub *realtime.Hub) *SyncHandler {
	return &SyncHandler{store: st, hub: hub}
}

// Connect handles GET /ws
func (h *SyncHandler) Connect(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r, middleware.GetClientIP(r), h.Snapshots)
}

// Snapshots returns the current state of every collection as sync messages
func (h *SyncHandler) Snapshots(ctx context.Context) ([]models.SyncMessage, error) {
	type source struct {
		event string
		raw   func(context.Context) ([]byte, uint64, error)
	}
	sources := []source{
		{models.EventTickets, h.store.Tickets.Raw},
		{models.EventEngineers, h.store.Engineers.Raw},
		{models.EventContacts, h.store.Contacts.Raw},
	}

	msgs := make([]models.SyncMessage, 0, len(sources))
	for _, s := range sources {
		data, rev, err := s.raw(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", s.event, err)
		}
		msgs = append(msgs, models.SyncMessage{
			Event:    s.event,
			Data:     json.RawMessage(data),
			Revision: rev,
		})
	}
	return msgs, nil
}
