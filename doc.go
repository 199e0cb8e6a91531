// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SupportCenter API server.

SupportCenter is a small IT helpdesk: requesters submit tickets, staff work
the queue and sign off completed jobs, managers read daily and monthly
reports. Every change is pushed to connected browsers over WebSocket.

# Starting the Server

With no remote store, data lives in JSON files under ./data:

	go run .

With PostgreSQL or SQLite as the remote store:

	DATABASE_URL=postgres://... go run .
	go run . -d "file:helpdesk.db"

With an Upstash / Vercel KV compatible REST store:

	KV_REST_API_URL=https://... KV_REST_API_TOKEN=... go run .

# Configuration

See package cliparse for every flag and environment variable. A .env file
in the working directory is loaded when present.

# Architecture

  - handlers: HTTP request handlers (tickets, engineers, contacts, reports)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, rate limiting, logging, JSON helpers
  - realtime: WebSocket hub
  - store: remote store, local file mirror, collections
  - ticketlist, reports: pure queue and report computations
  - models: domain, request and response types
  - ids: ticket and record identifiers
  - db: SQL schema for the remote key-value table
  - cliparse: Configuration parsing

The syncclient package and cmd/deskwatch implement the client side of the
sync protocol.
*/
package main
