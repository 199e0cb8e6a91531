// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime pushes collection updates to connected browsers and
desk clients over WebSocket.

# Hub

	hub := realtime.NewHub()
	go hub.Run(ctx)
	st, err := store.New(backend, hub)

Hub implements store.Publisher. Every successful write to a collection is
broadcast as

	{"event":"tickets:updated","data":[...],"revision":7}

with the full collection as data. Receivers replace their local copy.

# Connecting

ServeWS upgrades the request and sends one snapshot per collection before
any broadcast reaches the client. A client that sends

	{"event":"sync"}

receives fresh snapshots. There is no replay: a client that misses
messages while disconnected resynchronizes this way or by polling the REST
endpoints.

# Back-pressure

Each client has a small send buffer. When it fills, the hub drops the
client instead of blocking writers.
*/
package realtime
