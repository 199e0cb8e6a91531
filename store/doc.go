// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists the helpdesk collections.

# Collections

Three documents, one per key:

  - tickets:   []models.Ticket
  - engineers: models.EngineerRoster
  - contacts:  []models.Contact

Each is a Collection[T]. Reads never fail; they try, in order:

 1. the remote store (if configured)
 2. the local mirror <data-dir>/<key>.json
 3. a built-in default (no tickets; engineers and contacts from defaults.yaml)

Writes go to the remote store (failure logged) and always to the local file
(failure logged only when there is no remote store), then the new document
is handed to the Publisher for broadcast.

# Concurrency

A collection serializes its writes. Update performs read-modify-write under
the collection lock, so per-record ticket operations (CreateTicket,
UpdateTicket, DeleteTicket) never lose each other's changes inside one
process. Every write bumps an in-process revision; Replace accepts an
expected revision and fails with ErrRevisionMismatch when it is stale.

# Remote Backends

	sqlStore, err := store.NewSQLStore(conn)          // kv_store table
	restStore := store.NewRESTStore(url, token, nil)  // Upstash / Vercel KV REST API

# Wiring

	files, _ := store.NewFileStore("data")
	backend := store.NewBackend(remote, files, 5*time.Second)
	st, err := store.New(backend, hub)
*/
package store
