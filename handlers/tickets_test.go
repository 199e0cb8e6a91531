// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
	"github.com/innitec-lgtm/SupportCenter-v1/testutil"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, testutil.TestLocation)

func newTestTicketHandler(t *testing.T) (*TicketHandler, *store.Store) {
	t.Helper()
	st := testutil.SetupTestStore(t, nil)
	h := NewTicketHandler(st, testutil.GetTestConfig())
	h.now = func() time.Time { return fixedNow }
	return h, st
}

func strPtr(s string) *string { return &s }

func TestCreateTicket(t *testing.T) {
	h, st := newTestTicketHandler(t)

	t.Run("valid ticket", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/tickets", models.CreateTicketRequest{
			Name:        "  Mei  ",
			Department:  "Finance",
			Phone:       "210",
			Requirement: "VPN down",
			Urgency:     models.UrgencyHigh,
		}, nil)
		w := httptest.NewRecorder()
		h.Create(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)

		if ticket.ID == "" {
			t.Error("Expected server-assigned ID")
		}
		if ticket.Name != "Mei" {
			t.Errorf("Expected trimmed name, got %q", ticket.Name)
		}
		if ticket.Status != models.StatusPending {
			t.Errorf("Expected PENDING, got %s", ticket.Status)
		}
		if ticket.RequestTime != fixedNow.UnixMilli() {
			t.Errorf("Expected requestTime %d, got %d", fixedNow.UnixMilli(), ticket.RequestTime)
		}

		stored, err := st.GetTicket(req.Context(), ticket.ID)
		if err != nil {
			t.Fatalf("ticket not stored: %v", err)
		}
		if stored.Urgency != models.UrgencyHigh {
			t.Errorf("Expected stored urgency HIGH, got %s", stored.Urgency)
		}
	})

	t.Run("urgency defaults to medium", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/tickets", map[string]string{
			"name": "Lin", "department": "HR", "requirement": "Mouse",
		}, nil)
		w := httptest.NewRecorder()
		h.Create(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)
		if ticket.Urgency != models.UrgencyMedium {
			t.Errorf("Expected MEDIUM, got %s", ticket.Urgency)
		}
	})

	t.Run("typed request without urgency", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/tickets", models.CreateTicketRequest{
			Name: "Ann", Department: "IT", Requirement: "Keyboard",
		}, nil)
		w := httptest.NewRecorder()
		h.Create(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)
		if ticket.Urgency != models.UrgencyMedium {
			t.Errorf("Expected MEDIUM for empty urgency, got %s", ticket.Urgency)
		}
	})

	t.Run("legacy urgency label", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/tickets", map[string]string{
			"name": "Lin", "department": "HR", "requirement": "Mouse", "urgency": "高",
		}, nil)
		w := httptest.NewRecorder()
		h.Create(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)
		if ticket.Urgency != models.UrgencyHigh {
			t.Errorf("Expected HIGH, got %s", ticket.Urgency)
		}
	})

	errorCases := []struct {
		name string
		body interface{}
	}{
		{"missing name", map[string]string{"department": "HR", "requirement": "Mouse"}},
		{"missing requirement", map[string]string{"name": "Lin", "department": "HR"}},
		{"unknown urgency", map[string]string{"name": "Lin", "department": "HR", "requirement": "x", "urgency": "URGENT"}},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Create(w, testutil.MakeRequest("POST", "/api/tickets", tc.body, nil))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/tickets", nil)
		w := httptest.NewRecorder()
		h.Create(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestListTickets(t *testing.T) {
	h, st := newTestTicketHandler(t)
	base := fixedNow.Add(-3 * time.Hour)
	testutil.SeedTickets(t, st,
		testutil.MakeTicket("low-old", models.UrgencyLow, models.StatusPending, base),
		testutil.MakeTicket("high-done", models.UrgencyHigh, models.StatusCompleted, base),
		testutil.MakeTicket("high-new", models.UrgencyHigh, models.StatusInProgress, base.Add(time.Hour)),
		testutil.MakeTicket("high-old", models.UrgencyHigh, models.StatusPending, base.Add(-time.Hour)),
	)

	t.Run("raw collection", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.List(w, testutil.MakeRequest("GET", "/api/tickets", nil, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		if w.Header().Get("ETag") != `"1"` {
			t.Errorf("Expected ETag \"1\", got %s", w.Header().Get("ETag"))
		}
		var tickets []models.Ticket
		testutil.AssertJSON(t, w, &tickets)
		if len(tickets) != 4 || tickets[0].ID != "low-old" {
			t.Errorf("Expected stored order, got %v", ticketIDs(tickets))
		}
	})

	t.Run("queue view", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.List(w, testutil.MakeRequest("GET", "/api/tickets?view=queue", nil, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var views []models.TicketView
		testutil.AssertJSON(t, w, &views)

		want := []string{"high-old", "high-new", "low-old", "high-done"}
		if len(views) != len(want) {
			t.Fatalf("Expected %d views, got %d", len(want), len(views))
		}
		for i, id := range want {
			if views[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, views[i].ID)
			}
		}
		if views[0].Elapsed != "4 hours ago" {
			t.Errorf("Expected elapsed '4 hours ago', got %q", views[0].Elapsed)
		}
	})

	t.Run("queue view urgency filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.List(w, testutil.MakeRequest("GET", "/api/tickets?view=queue&urgency=low", nil, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var views []models.TicketView
		testutil.AssertJSON(t, w, &views)
		if len(views) != 1 || views[0].ID != "low-old" {
			t.Errorf("Expected only low-old, got %d views", len(views))
		}
	})

	t.Run("queue view bad urgency", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.List(w, testutil.MakeRequest("GET", "/api/tickets?view=queue&urgency=SOON", nil, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("track view active only", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.List(w, testutil.MakeRequest("GET", "/api/tickets?view=track&q=user&active=true", nil, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var views []models.TicketView
		testutil.AssertJSON(t, w, &views)
		if len(views) != 3 {
			t.Fatalf("Expected 3 active tickets, got %d", len(views))
		}
		if views[0].ID != "high-new" {
			t.Errorf("Expected newest first, got %s", views[0].ID)
		}
	})

	t.Run("unknown view", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.List(w, testutil.MakeRequest("GET", "/api/tickets?view=board", nil, nil))
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestGetTicket(t *testing.T) {
	h, st := newTestTicketHandler(t)
	testutil.SeedTickets(t, st, testutil.MakeTicket("abc", models.UrgencyLow, models.StatusPending, fixedNow))

	req := testutil.MakeRequest("GET", "/api/tickets/abc", nil, nil)
	req.SetPathValue("id", "abc")
	w := httptest.NewRecorder()
	h.Get(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	req = testutil.MakeRequest("GET", "/api/tickets/nope", nil, nil)
	req.SetPathValue("id", "nope")
	w = httptest.NewRecorder()
	h.Get(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestUpdateTicket(t *testing.T) {
	h, st := newTestTicketHandler(t)
	testutil.SeedTickets(t, st, testutil.MakeTicket("abc", models.UrgencyLow, models.StatusPending, fixedNow.Add(-time.Hour)))

	update := func(body interface{}) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("PUT", "/api/tickets/abc", body, nil)
		req.SetPathValue("id", "abc")
		w := httptest.NewRecorder()
		h.Update(w, req)
		return w
	}

	t.Run("start work assigns default engineer", func(t *testing.T) {
		w := update(map[string]string{"status": "IN_PROGRESS", "processNote": "on my way"})
		testutil.AssertStatus(t, w, http.StatusOK)

		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)
		if ticket.AssignedEngineer != "Alex Chen" {
			t.Errorf("Expected default engineer, got %q", ticket.AssignedEngineer)
		}
		if ticket.CompletionTime != nil {
			t.Error("Expected no completion time while in progress")
		}
	})

	t.Run("complete without signature", func(t *testing.T) {
		w := update(map[string]string{"status": "COMPLETED"})
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("complete with signature", func(t *testing.T) {
		w := update(map[string]string{"status": "COMPLETED", "signature": testutil.TestSignature})
		testutil.AssertStatus(t, w, http.StatusOK)

		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)
		if ticket.CompletionTime == nil || *ticket.CompletionTime != fixedNow.UnixMilli() {
			t.Errorf("Expected completion time %d, got %v", fixedNow.UnixMilli(), ticket.CompletionTime)
		}
	})

	t.Run("reopen clears completion time", func(t *testing.T) {
		w := update(map[string]string{"status": "IN_PROGRESS"})
		testutil.AssertStatus(t, w, http.StatusOK)

		var ticket models.Ticket
		testutil.AssertJSON(t, w, &ticket)
		if ticket.CompletionTime != nil {
			t.Error("Expected completion time cleared")
		}
	})

	t.Run("request time is immutable", func(t *testing.T) {
		w := update(map[string]int64{"requestTime": 1})
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	for _, body := range []map[string]string{
		{"status": "ARCHIVED"},
		{"status": ""},
		{"urgency": "URGENT"},
	} {
		t.Run(fmt.Sprintf("rejects %v", body), func(t *testing.T) {
			w := update(body)
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	t.Run("unknown ticket", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/api/tickets/zzz", models.UpdateTicketRequest{Name: strPtr("x")}, nil)
		req.SetPathValue("id", "zzz")
		w := httptest.NewRecorder()
		h.Update(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestDeleteTicket(t *testing.T) {
	h, st := newTestTicketHandler(t)
	testutil.SeedTickets(t, st,
		testutil.MakeTicket("a", models.UrgencyLow, models.StatusPending, fixedNow),
		testutil.MakeTicket("b", models.UrgencyLow, models.StatusPending, fixedNow),
	)

	req := testutil.MakeRequest("DELETE", "/api/tickets/a", nil, nil)
	req.SetPathValue("id", "a")
	w := httptest.NewRecorder()
	h.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	tickets, _ := st.Tickets.Load(req.Context())
	if len(tickets) != 1 || tickets[0].ID != "b" {
		t.Errorf("Expected only b to remain, got %v", ticketIDs(tickets))
	}

	w = httptest.NewRecorder()
	h.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func ticketIDs(tickets []models.Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}
