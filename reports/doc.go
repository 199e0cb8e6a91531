// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reports computes manager-facing aggregates over the ticket list.

All functions are pure: they take the full ticket collection and return a
value from package models. Calendar boundaries are evaluated in the
*time.Location passed in (the server's configured timezone).

# Daily

	r := reports.Daily(tickets, day, loc)

Requested, Completed and Pending (open at the end of the day, including
tickets completed on a later day).

# Monthly

	r := reports.Monthly(tickets, 2026, time.February, loc)

Tickets requested in the month, completed/pending counts, departments by
descending count, and a request count for every day of the month.

# Resolution Time

	mins := reports.AverageResolutionMinutes(tickets)

Mean of completion minus request time over completed tickets, rounded to
the nearest minute; 0 when there are none.
*/
package reports
