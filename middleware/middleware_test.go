// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
)

func TestWithLoggingPassesResponsesThrough(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		body    string
	}{
		{
			name:    "health text",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("OK")) },
			status:  http.StatusOK,
			body:    "OK",
		},
		{
			name: "raw collection",
			handler: func(w http.ResponseWriter, r *http.Request) {
				RawJSONResponse(w, http.StatusOK, []byte("[]"))
			},
			status: http.StatusOK,
			body:   "[]",
		},
		{
			name: "ticket not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				ErrorResponse(w, http.StatusNotFound, "Ticket not found")
			},
			status: http.StatusNotFound,
			body:   `{"error":"Not Found","message":"Ticket not found"}`,
		},
		{
			name:    "delete without body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
			status:  http.StatusNoContent,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WithLogging(tc.handler)(w, httptest.NewRequest("GET", "/api/tickets/abc", nil))

			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tc.body {
				t.Errorf("body = %q, want %q", got, tc.body)
			}
		})
	}
}

func TestWithLoggingKeepsHijacker(t *testing.T) {
	var hijackable bool
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		_, hijackable = w.(http.Hijacker)
	})

	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if !hijackable {
		t.Error("wrapped writer must still support Hijack for the sync socket")
	}
}

func TestResponseHelpers(t *testing.T) {
	testCases := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		body   string
	}{
		{
			name: "contacts list",
			write: func(w http.ResponseWriter) {
				JSONResponse(w, http.StatusOK, []models.Contact{{ID: "c1", Name: "Mei", Department: "Finance", Extension: "210"}})
			},
			status: http.StatusOK,
			body:   `[{"id":"c1","name":"Mei","department":"Finance","extension":"210"}]`,
		},
		{
			name: "import result",
			write: func(w http.ResponseWriter) {
				JSONResponse(w, http.StatusCreated, models.ImportContactsResponse{Imported: 0, Skipped: 2, Contacts: []models.Contact{}})
			},
			status: http.StatusCreated,
			body:   `{"imported":0,"skipped":2,"contacts":[]}`,
		},
		{
			name: "trend day",
			write: func(w http.ResponseWriter) {
				JSONResponse(w, http.StatusOK, models.DayCount{Date: "2025-03-01", Count: 4})
			},
			status: http.StatusOK,
			body:   `{"date":"2025-03-01","count":4}`,
		},
		{
			name:   "stored document verbatim",
			write:  func(w http.ResponseWriter) { RawJSONResponse(w, http.StatusOK, []byte("{\n  \"engineers\": []\n}")) },
			status: http.StatusOK,
			body:   "{\n  \"engineers\": []\n}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.write(w)

			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := strings.TrimSuffix(w.Body.String(), "\n"); got != tc.body {
				t.Errorf("body = %q, want %q", got, tc.body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	// messages the handlers send for each status
	testCases := []struct {
		status  int
		message string
		label   string
	}{
		{http.StatusBadRequest, "Invalid JSON", "Bad Request"},
		{http.StatusNotFound, "Engineer not found", "Not Found"},
		{http.StatusPreconditionFailed, "Collection changed since it was read, reload and retry", "Precondition Failed"},
		{http.StatusTooManyRequests, "Too many requests, slow down", "Too Many Requests"},
		{http.StatusServiceUnavailable, "Stored data could not be read, changes are paused", "Service Unavailable"},
	}

	for _, tc := range testCases {
		t.Run(tc.label, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(w, tc.status, tc.message)

			if w.Code != tc.status {
				t.Errorf("status = %d, want %d", w.Code, tc.status)
			}
			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tc.label || resp.Message != tc.message {
				t.Errorf("got %+v", resp)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("partial ticket update", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/api/tickets/abc", strings.NewReader(`{"status":"處理中","processNote":"on site"}`))

		var parsed models.UpdateTicketRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatal(err)
		}
		if parsed.Status == nil || *parsed.Status != models.StatusInProgress {
			t.Errorf("legacy status should decode to IN_PROGRESS, got %v", parsed.Status)
		}
		if parsed.ProcessNote == nil || *parsed.ProcessNote != "on site" {
			t.Errorf("processNote = %v", parsed.ProcessNote)
		}
		if parsed.Name != nil || parsed.Urgency != nil || parsed.Signature != nil {
			t.Error("absent fields should stay nil")
		}
	})

	t.Run("legacy engineer array", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/engineers", strings.NewReader(`[{"id":"1","name":"Amy","isDefault":true}]`))

		var roster models.EngineerRoster
		if err := ParseJSONBody(req, &roster); err != nil {
			t.Fatal(err)
		}
		if roster.DefaultName() != "Amy" {
			t.Errorf("default = %q", roster.DefaultName())
		}
	})

	errorCases := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"empty", ""},
		{"wrong shape", `["not","a","ticket"]`},
		{"oversized", `{"requirement":"` + strings.Repeat("x", MaxBodyBytes) + `"}`},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/tickets", strings.NewReader(tc.body))
			var parsed models.CreateTicketRequest
			if err := ParseJSONBody(req, &parsed); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCORS(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	t.Run("preflight request", func(t *testing.T) {
		handler := CORS(nil)(nextHandler)
		req := httptest.NewRequest("OPTIONS", "/api/tickets/abc", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type, If-Match")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK && w.Code != http.StatusNoContent {
			t.Errorf("Expected preflight success status, got %d", w.Code)
		}
		if w.Body.String() == "handled" {
			t.Error("Expected preflight to be answered without calling next handler")
		}
		if w.Header().Get("Access-Control-Allow-Origin") == "" {
			t.Error("Expected Access-Control-Allow-Origin on preflight")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PUT") {
			t.Errorf("Expected PUT to be allowed, got %q", w.Header().Get("Access-Control-Allow-Methods"))
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "If-Match") {
			t.Errorf("Expected If-Match to be allowed, got %q", w.Header().Get("Access-Control-Allow-Headers"))
		}
	})

	t.Run("wildcard origin", func(t *testing.T) {
		handler := CORS([]string{"*"})(nextHandler)
		req := httptest.NewRequest("GET", "/api/tickets", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("Expected '*', got %q", w.Header().Get("Access-Control-Allow-Origin"))
		}
		if !strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Etag") &&
			!strings.Contains(w.Header().Get("Access-Control-Expose-Headers"), "ETag") {
			t.Errorf("Expected ETag to be exposed, got %q", w.Header().Get("Access-Control-Expose-Headers"))
		}
	})

	t.Run("listed origin is reflected", func(t *testing.T) {
		handler := CORS([]string{"https://desk.example.com"})(nextHandler)
		req := httptest.NewRequest("GET", "/api/tickets", nil)
		req.Header.Set("Origin", "https://desk.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "https://desk.example.com" {
			t.Errorf("Expected origin to be reflected, got %q", w.Header().Get("Access-Control-Allow-Origin"))
		}
	})

	t.Run("unlisted origin gets no header", func(t *testing.T) {
		handler := CORS([]string{"https://desk.example.com"})(nextHandler)
		req := httptest.NewRequest("GET", "/api/tickets", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no Access-Control-Allow-Origin, got %q", got)
		}
	})
}

func TestNoCache(t *testing.T) {
	handler := NoCache(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/tickets", nil))

	if !strings.Contains(w.Header().Get("Cache-Control"), "no-store") {
		t.Errorf("Expected no-store Cache-Control, got %q", w.Header().Get("Cache-Control"))
	}
	if w.Header().Get("Pragma") != "no-cache" {
		t.Errorf("Expected Pragma no-cache, got %q", w.Header().Get("Pragma"))
	}
}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	send := func(h http.Handler, remote, forwarded string) int {
		req := httptest.NewRequest("GET", "/api/tickets", nil)
		req.RemoteAddr = remote
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("limits per connection address", func(t *testing.T) {
		h := RateLimit(2, false)(ok)
		codes := []int{
			send(h, "192.0.2.10:5000", ""),
			send(h, "192.0.2.10:5001", ""),
			send(h, "192.0.2.10:5002", ""),
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
			t.Errorf("codes = %v, want [200 200 429]", codes)
		}
		if code := send(h, "192.0.2.11:5000", ""); code != http.StatusOK {
			t.Errorf("other client got %d", code)
		}
	})

	t.Run("forged forwarding headers do not reset the limit", func(t *testing.T) {
		h := RateLimit(2, false)(ok)
		var last int
		for i := 0; i < 3; i++ {
			last = send(h, "192.0.2.20:5000", "203.0.113."+strconv.Itoa(i+1))
		}
		if last != http.StatusTooManyRequests {
			t.Errorf("rotating X-Forwarded-For bypassed the limit: %d", last)
		}
	})

	t.Run("trusted proxy keys on forwarded client", func(t *testing.T) {
		h := RateLimit(1, true)(ok)
		if code := send(h, "10.0.0.1:80", "203.0.113.1"); code != http.StatusOK {
			t.Errorf("first client got %d", code)
		}
		if code := send(h, "10.0.0.1:80", "203.0.113.2"); code != http.StatusOK {
			t.Errorf("second client behind the same proxy got %d", code)
		}
		if code := send(h, "10.0.0.1:80", "203.0.113.1"); code != http.StatusTooManyRequests {
			t.Errorf("repeat client got %d, want 429", code)
		}
	})

	t.Run("zero disables", func(t *testing.T) {
		h := RateLimit(0, false)(ok)
		for i := 0; i < 50; i++ {
			if code := send(h, "192.0.2.30:5000", ""); code != http.StatusOK {
				t.Fatalf("request %d: got %d", i, code)
			}
		}
	})
}

func TestRevisionHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	SetRevision(w, 42)
	if got := w.Header().Get("ETag"); got != `"42"` {
		t.Errorf("Expected ETag \"42\", got %s", got)
	}

	testCases := []struct {
		name    string
		header  string
		want    *uint64
		wantErr bool
	}{
		{name: "absent", header: ""},
		{name: "wildcard", header: "*"},
		{name: "quoted", header: `"7"`, want: ptr(7)},
		{name: "weak", header: `W/"7"`, want: ptr(7)},
		{name: "bare", header: "7", want: ptr(7)},
		{name: "garbage", header: `"abc"`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/api/tickets/x", nil)
			if tc.header != "" {
				req.Header.Set("If-Match", tc.header)
			}
			got, err := IfMatch(req)
			if tc.wantErr {
				if !errors.Is(err, ErrBadPrecondition) {
					t.Fatalf("Expected ErrBadPrecondition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if (got == nil) != (tc.want == nil) || (got != nil && *got != *tc.want) {
				t.Errorf("IfMatch() = %v, want %v", got, tc.want)
			}
		})
	}
}

func ptr(v uint64) *uint64 { return &v }

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"behind proxy chain", "203.0.113.195, 70.41.3.18", "", "10.0.0.1:12345", "203.0.113.195"},
		{"real ip header", "", "203.0.113.50", "10.0.0.1:12345", "203.0.113.50"},
		{"forwarded wins over real ip", "192.168.1.100", "203.0.113.50", "10.0.0.1:12345", "192.168.1.100"},
		{"direct connection", "", "", "192.168.1.50:54321", "192.168.1.50"},
		{"address without port", "", "", "192.168.1.50", "192.168.1.50"},
		{"ipv6 loopback", "", "", "[::1]:12345", "::1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := GetClientIP(req); got != tc.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tc.want)
			}
		})
	}
}
