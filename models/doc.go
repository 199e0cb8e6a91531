// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Ticket: one support request, from submission to completion
  - Engineer: staff member eligible for assignment
  - EngineerRoster: the engineers collection plus an optional default reference
  - Contact: directory entry used to autofill requester details by extension

Timestamps on Ticket are milliseconds since the Unix epoch, which keeps the
persisted documents identical to the ones the browser clients produce.

# Enumerations

Urgency:

	UrgencyHigh   = "HIGH"
	UrgencyMedium = "MEDIUM"
	UrgencyLow    = "LOW"

Status (forward-only by convention, not enforced):

	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"

Both decode the localized labels older data files contain and always encode
the constants above. Any other stored value is kept verbatim so one odd
ticket does not hide the rest of the collection; Valid reports whether a
value is one of the constants, and Apply rejects anything else.

# Ticket Updates

Ticket.Apply merges an UpdateTicketRequest:

	updated, err := ticket.Apply(req, roster.DefaultName(), time.Now())

Completing a ticket stamps completionTime once and requires a signature.
Moving it out of COMPLETED clears the stamp.

# Engineer Roster

Older files store engineers as an array with an isDefault flag per entry.
EngineerRoster decodes either shape:

	[{"id":"1","name":"Amy","isDefault":true}]
	{"engineers":[{"id":"1","name":"Amy"}],"defaultEngineerId":"1"}

and always encodes the second.

# Reports and Sync

DailyReport, MonthlyReport and Summary are produced by package reports.
SyncMessage is the frame format of the real-time channel; Event is one of
EventTickets, EventEngineers, EventContacts, or EventSync (client request
for fresh snapshots).
*/
package models
