// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ids generates identifiers for records and connections.

# Ticket IDs

	id, err := ids.NewTicketID()

48 random bits encoded as base62 (0-9, a-z, A-Z), at most 9 characters.
Short enough to read out over the phone when a requester asks about
progress.

# Record IDs

	id := ids.NewRecordID()

Engineers and contacts use random UUIDs.

# Random hex IDs

	id, err := ids.GenerateID(8)

Used for real-time connection identifiers in logs.
*/
package ids
