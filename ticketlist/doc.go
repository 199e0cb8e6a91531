// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ticketlist orders and filters tickets for display.

# Work Queue

	visible := ticketlist.Apply(tickets, ticketlist.Query{Text: "printer", Urgency: "HIGH"})

Ordering is lexicographic and stable:

 1. open tickets before completed tickets
 2. urgency descending (HIGH > MEDIUM > LOW)
 3. request time ascending (oldest first)

The text filter is a case-sensitive substring match on name, requirement,
or department. No pagination: queues hold tens to low thousands of tickets.

# Tracking Search

	mine := ticketlist.Track(tickets, "0912", true)

Requesters look up their own tickets by name, department, phone or ticket
number; results are newest first.
*/
package ticketlist
