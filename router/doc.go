// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SupportCenter API.

# Route Registration

	handler := router.NewRouter(st, hub, cfg)

NewRouter wraps the ServeMux from NewMux with CORS, rate limiting and
no-cache headers. Every route except /health is request-logged.

# Endpoints

Health and client bootstrap:

	GET /health      - plain "OK"
	GET /status      - version, remote store flag, connected clients
	GET /api/config  - URLs and version for clients

Tickets:

	GET    /api/tickets      - collection or ?view=queue / ?view=track
	POST   /api/tickets      - submit
	GET    /api/tickets/{id} - one ticket
	PUT    /api/tickets/{id} - update
	DELETE /api/tickets/{id} - delete

Engineers and contacts:

	GET  /api/engineers        - roster
	POST /api/engineers        - replace roster (If-Match)
	GET  /api/contacts         - directory
	POST /api/contacts         - replace directory (If-Match)
	GET  /api/contacts/lookup  - by ?ext=
	POST /api/contacts/import  - append delimited lines

Reports:

	GET /api/reports/daily?date=YYYY-MM-DD
	GET /api/reports/monthly?month=YYYY-MM
	GET /api/reports/summary

Real-time:

	GET /ws - WebSocket, see package realtime
*/
package router
