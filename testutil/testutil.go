// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/innitec-lgtm/SupportCenter-v1/cliparse"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

// TestSignature is a minimal valid signature data URL
const TestSignature = "data:image/png;base64,iVBORw0KGgo="

// TestLocation is the zone report tests run in
var TestLocation = time.FixedZone("UTC+8", 8*60*60)

// SetupTestStore creates a file-only store in a temporary directory. pub may
// be nil.
func SetupTestStore(t *testing.T, pub store.Publisher) *store.Store {
	t.Helper()

	files, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}
	st, err := store.New(store.NewBackend(nil, files, time.Second), pub)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3000,
		DataDir:        "data",
		Backend:        cliparse.BackendNone,
		AppURL:         "http://localhost:3000",
		SharedAppURL:   "http://localhost:3000/submit",
		Env:            cliparse.EnvDevelopment,
		Timezone:       "UTC+8",
		Location:       TestLocation,
		RemoteTimeout:  time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// MakeTicket builds a ticket with the given queue-relevant fields
func MakeTicket(id string, urgency models.Urgency, status models.TicketStatus, requested time.Time) models.Ticket {
	t := models.Ticket{
		ID:          id,
		Name:        "User " + id,
		Department:  "IT",
		Phone:       "100",
		Requirement: "Printer jam",
		Urgency:     urgency,
		RequestTime: requested.UnixMilli(),
		Status:      status,
	}
	if status == models.StatusCompleted {
		done := requested.Add(30 * time.Minute).UnixMilli()
		t.CompletionTime = &done
		t.Signature = TestSignature
	}
	return t
}

// SeedTickets replaces the ticket collection
func SeedTickets(t *testing.T, st *store.Store, tickets ...models.Ticket) {
	t.Helper()
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	if _, err := st.Tickets.Replace(context.Background(), tickets, nil); err != nil {
		t.Fatalf("Failed to seed tickets: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
