// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SupportCenter API.

# Handler Types

Each handler is a struct over the shared store and config:

  - TicketHandler: queue listing, submission, per-ticket update and delete
  - EngineerHandler: roster read, replace and per-engineer edits
  - ContactHandler: directory, extension lookup, bulk import
  - ReportHandler: daily, monthly and summary reports
  - MetaHandler: health, status and client config
  - SyncHandler: WebSocket endpoint and snapshots

	tickets := handlers.NewTicketHandler(st, cfg)

# Tickets

	GET    /api/tickets                  → List (stored collection, ETag)
	GET    /api/tickets?view=queue&q=&urgency= → List (sorted, filtered, with age)
	GET    /api/tickets?view=track&q=&active=  → List (requester search)
	POST   /api/tickets                  → Create (201)
	GET    /api/tickets/{id}             → Get
	PUT    /api/tickets/{id}             → Update
	DELETE /api/tickets/{id}             → Delete (204)

The server assigns id, requestTime and PENDING on create. Updates go
through models.Ticket.Apply: completing needs a signature, the completion
time is stamped once and cleared on reopen, and a ticket without an
engineer gets the roster default.

# Collections

Engineers and contacts are replaced whole with POST. Both honor If-Match
against the ETag from the last read and answer 412 when stale. A replace
whose default is not listed promotes the first engineer.

	PUT    /api/engineers/{id}           → Put (add, or rename)
	DELETE /api/engineers/{id}           → Remove
	PUT    /api/engineers/{id}/default   → SetDefault

# Error Mapping

	store.ErrTicketNotFound   → 404
	models.ErrEngineerNotFound → 404
	store.ErrUnreadable       → 503, logged
	store.ErrRevisionMismatch → 412
	model validation errors   → 400 with the error text
	anything else             → 500, logged
*/
package handlers
