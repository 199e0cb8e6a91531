// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ticketlist

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

func ticket(id string, u models.Urgency, status models.TicketStatus, requested int64) models.Ticket {
	return models.Ticket{
		ID:          id,
		Name:        "User " + id,
		Department:  "IT",
		Requirement: "Help",
		Urgency:     u,
		Status:      status,
		RequestTime: requested,
	}
}

func ids(tickets []models.Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}

func TestApplyOrdering(t *testing.T) {
	tickets := []models.Ticket{
		ticket("done-high", models.UrgencyHigh, models.StatusCompleted, 100),
		ticket("med-early", models.UrgencyMedium, models.StatusPending, 200),
		ticket("high-late", models.UrgencyHigh, models.StatusPending, 900),
		ticket("low", models.UrgencyLow, models.StatusInProgress, 50),
		ticket("high-early", models.UrgencyHigh, models.StatusInProgress, 300),
		ticket("done-low", models.UrgencyLow, models.StatusCompleted, 10),
	}

	got := ids(Apply(tickets, Query{}))
	want := []string{"high-early", "high-late", "med-early", "low", "done-high", "done-low"}

	if len(got) != len(want) {
		t.Fatalf("Apply() returned %d tickets, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s (full order %v)", i, got[i], want[i], got)
		}
	}
}

func TestApplyHighLaterBeatsMediumEarlier(t *testing.T) {
	tickets := []models.Ticket{
		ticket("medium", models.UrgencyMedium, models.StatusPending, 1000),
		ticket("completed", models.UrgencyHigh, models.StatusCompleted, 1),
		ticket("high", models.UrgencyHigh, models.StatusPending, 5000),
	}

	got := ids(Apply(tickets, Query{Urgency: AllUrgencies}))
	if got[0] != "high" || got[1] != "medium" || got[2] != "completed" {
		t.Errorf("unexpected order %v", got)
	}
}

func TestApplyIsStable(t *testing.T) {
	var tickets []models.Ticket
	for i := 0; i < 10; i++ {
		tickets = append(tickets, ticket(string(rune('a'+i)), models.UrgencyLow, models.StatusPending, 42))
	}

	got := ids(Apply(tickets, Query{}))
	for i, id := range got {
		if id != string(rune('a'+i)) {
			t.Fatalf("equal tickets reordered: %v", got)
		}
	}
}

func TestApplyOrderingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	urgencies := []models.Urgency{models.UrgencyHigh, models.UrgencyMedium, models.UrgencyLow}
	statuses := []models.TicketStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted}

	for round := 0; round < 50; round++ {
		var tickets []models.Ticket
		for i := 0; i < 40; i++ {
			tickets = append(tickets, ticket(
				string(rune('A'+i)),
				urgencies[rng.Intn(3)],
				statuses[rng.Intn(3)],
				int64(rng.Intn(20)),
			))
		}

		got := Apply(tickets, Query{})
		if !sort.SliceIsSorted(got, func(i, j int) bool { return Less(got[i], got[j]) }) {
			t.Fatalf("round %d: result not ordered", round)
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].IsCompleted() && !got[i].IsCompleted() {
				t.Fatalf("round %d: completed ticket before open ticket", round)
			}
		}
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	tickets := []models.Ticket{
		ticket("b", models.UrgencyLow, models.StatusPending, 2),
		ticket("a", models.UrgencyHigh, models.StatusPending, 1),
	}
	Apply(tickets, Query{})
	if tickets[0].ID != "b" || tickets[1].ID != "a" {
		t.Error("Apply() reordered its input")
	}
}

func TestApplyFilter(t *testing.T) {
	tickets := []models.Ticket{
		{ID: "1", Name: "Alice", Department: "Finance", Requirement: "VPN down", Urgency: models.UrgencyHigh},
		{ID: "2", Name: "Bob", Department: "IT", Requirement: "new mouse", Urgency: models.UrgencyLow},
		{ID: "3", Name: "Carol", Department: "Nursing", Requirement: "Printer jam", Urgency: models.UrgencyMedium},
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"empty query", Query{}, []string{"1", "3", "2"}},
		{"name match", Query{Text: "Bob"}, []string{"2"}},
		{"requirement match", Query{Text: "Printer"}, []string{"3"}},
		{"department match", Query{Text: "Fin"}, []string{"1"}},
		{"case sensitive", Query{Text: "printer"}, []string{}},
		{"urgency filter", Query{Urgency: "LOW"}, []string{"2"}},
		{"all urgencies", Query{Urgency: AllUrgencies}, []string{"1", "3", "2"}},
		{"text and urgency", Query{Text: "VPN", Urgency: "LOW"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(tickets, tt.query))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTrack(t *testing.T) {
	tickets := []models.Ticket{
		{ID: "aa1", Name: "Alice", Department: "Finance", Phone: "0912", RequestTime: 1},
		{ID: "bb2", Name: "alice w", Department: "IT", Phone: "555", RequestTime: 3, Status: models.StatusCompleted},
		{ID: "cc3", Name: "Bob", Department: "FINANCE", Phone: "777", RequestTime: 2},
	}

	got := ids(Track(tickets, "ALICE", false))
	if len(got) != 2 || got[0] != "bb2" || got[1] != "aa1" {
		t.Errorf("name search newest first: got %v", got)
	}

	got = ids(Track(tickets, "alice", true))
	if len(got) != 1 || got[0] != "aa1" {
		t.Errorf("active only: got %v", got)
	}

	got = ids(Track(tickets, "finance", false))
	if len(got) != 2 || got[0] != "cc3" {
		t.Errorf("department search: got %v", got)
	}

	got = ids(Track(tickets, "cc3", false))
	if len(got) != 1 || got[0] != "cc3" {
		t.Errorf("id search: got %v", got)
	}
}

func TestPendingCount(t *testing.T) {
	tickets := []models.Ticket{
		{Status: models.StatusPending},
		{Status: models.StatusInProgress},
		{Status: models.StatusCompleted},
	}
	if got := PendingCount(tickets); got != 2 {
		t.Errorf("PendingCount() = %d, want 2", got)
	}
}

func TestElapsed(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 20 * time.Second, "just now"},
		{"minutes", 5 * time.Minute, "5 minutes ago"},
		{"hours", 3 * time.Hour, "3 hours ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Elapsed(now.Add(-tt.ago).UnixMilli(), now)
			if got != tt.want {
				t.Errorf("Elapsed() = %q, want %q", got, tt.want)
			}
		})
	}
}
