// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ticketlist

import (
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

// AllUrgencies disables the urgency filter
const AllUrgencies = "ALL"

// Query selects the visible part of the queue
type Query struct {
	Text    string // case-sensitive substring of name, requirement, or department
	Urgency string // AllUrgencies, "" (same as all), or an urgency level
}

// Apply filters tickets by q and orders them for the work queue:
//  1. open tickets before completed ones
//  2. higher urgency first
//  3. older requests first (first come, first served)
//
// The sort is stable and the input slice is not modified.
func Apply(tickets []models.Ticket, q Query) []models.Ticket {
	out := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if matches(t, q) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}

// Less reports whether a sorts before b in the work queue
func Less(a, b models.Ticket) bool {
	// 1. Open tickets come first
	if a.IsCompleted() != b.IsCompleted() {
		return !a.IsCompleted()
	}

	// 2. Higher urgency wins
	if a.Urgency.Rank() != b.Urgency.Rank() {
		return a.Urgency.Rank() > b.Urgency.Rank()
	}

	// 3. Earlier request wins
	return a.RequestTime < b.RequestTime
}

func matches(t models.Ticket, q Query) bool {
	if q.Urgency != "" && q.Urgency != AllUrgencies && string(t.Urgency) != q.Urgency {
		return false
	}
	if q.Text == "" {
		return true
	}
	return strings.Contains(t.Name, q.Text) ||
		strings.Contains(t.Requirement, q.Text) ||
		strings.Contains(t.Department, q.Text)
}

// Track is the requester-facing progress search: case-insensitive on name
// and department, substring on phone and ticket ID, newest first.
func Track(tickets []models.Ticket, text string, activeOnly bool) []models.Ticket {
	needle := strings.ToLower(text)
	out := make([]models.Ticket, 0)
	for _, t := range tickets {
		if activeOnly && t.IsCompleted() {
			continue
		}
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Department), needle) ||
			strings.Contains(t.Phone, text) ||
			strings.Contains(t.ID, text) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RequestTime > out[j].RequestTime
	})
	return out
}

// PendingCount counts tickets that are not completed
func PendingCount(tickets []models.Ticket) int {
	n := 0
	for _, t := range tickets {
		if !t.IsCompleted() {
			n++
		}
	}
	return n
}

// Views decorates tickets with their age relative to now
func Views(tickets []models.Ticket, now time.Time) []models.TicketView {
	out := make([]models.TicketView, len(tickets))
	for i, t := range tickets {
		out[i] = models.TicketView{Ticket: t, Elapsed: Elapsed(t.RequestTime, now)}
	}
	return out
}

// Elapsed renders how long ago a request was made ("3 hours ago")
func Elapsed(requestTime int64, now time.Time) string {
	then := time.UnixMilli(requestTime)
	if now.Sub(then) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(then, now, "ago", "from now")
}
