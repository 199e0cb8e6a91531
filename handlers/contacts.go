// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/innitec-lgtm/SupportCenter-v1/ids"
	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

type ContactHandler struct {
	store *store.Store
}

func NewContactHandler(st *store.Store) *ContactHandler {
	return &ContactHandler{store: st}
}

// List handles GET /api/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	data, rev, err := h.store.Contacts.Raw(r.Context())
	if err != nil {
		slog.Error("failed to encode contacts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load contacts")
		return
	}
	middleware.SetRevision(w, rev)
	middleware.RawJSONResponse(w, http.StatusOK, data)
}

// Replace handles POST /api/contacts
func (h *ContactHandler) Replace(w http.ResponseWriter, r *http.Request) {
	expected, ok := precondition(w, r)
	if !ok {
		return
	}

	var contacts []models.Contact
	if !parseBody(w, r, &contacts) {
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	rev, err := h.store.ReplaceContacts(r.Context(), contacts, expected)
	if err != nil {
		writeStoreError(w, err, "save contacts")
		return
	}

	slog.Info("contacts replaced", "count", len(contacts), "revision", rev)

	saved, _ := h.store.Contacts.Load(r.Context())
	middleware.SetRevision(w, rev)
	middleware.JSONResponse(w, http.StatusOK, saved)
}

// Lookup handles GET /api/contacts/lookup?ext=
func (h *ContactHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	ext := strings.TrimSpace(r.URL.Query().Get("ext"))
	if ext == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ext is required")
		return
	}

	contacts, _ := h.store.Contacts.Load(r.Context())
	contact, ok := models.FindByExtension(contacts, ext)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "No contact with that extension")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, contact)
}

// Import handles POST /api/contacts/import
func (h *ContactHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req models.ImportContactsRequest
	if !parseBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	parsed, skipped := ParseContactLines(req.Text)
	if len(parsed) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No valid contacts found; each line needs department, name and extension")
		return
	}

	if _, err := h.store.AppendContacts(r.Context(), parsed); err != nil {
		writeStoreError(w, err, "import contacts")
		return
	}

	slog.Info("contacts imported", "imported", len(parsed), "skipped", skipped)

	middleware.JSONResponse(w, http.StatusOK, models.ImportContactsResponse{
		Imported: len(parsed),
		Skipped:  skipped,
		Contacts: parsed,
	})
}

var (
	fieldSeparator = regexp.MustCompile(`[,\t;]|\s{2,}`)
	headerWords    = map[string]bool{
		"單位": true, "姓名": true, "分機": true, "部門": true,
		"department": true, "name": true, "extension": true,
	}
)

// ParseContactLines reads "department, name, extension" lines separated by
// commas, tabs, semicolons or runs of spaces, falling back to single spaces.
// A header on the first line is ignored. Lines with fewer than three fields
// are counted as skipped.
func ParseContactLines(text string) (contacts []models.Contact, skipped int) {
	first := true
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first {
			first = false
			if isHeaderLine(line) {
				continue
			}
		}

		parts := splitFields(line)
		if len(parts) < 3 {
			if spaced := strings.Fields(line); len(spaced) >= 3 {
				parts = spaced
			}
		}
		if len(parts) < 3 {
			skipped++
			continue
		}

		contacts = append(contacts, models.Contact{
			ID:         ids.NewRecordID(),
			Department: parts[0],
			Name:       parts[1],
			Extension:  parts[2],
		})
	}
	return contacts, skipped
}

func splitFields(line string) []string {
	var out []string
	for _, p := range fieldSeparator.Split(line, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isHeaderLine reports whether any whole field is a column title
func isHeaderLine(line string) bool {
	fields := splitFields(line)
	if len(fields) < 3 {
		fields = strings.Fields(line)
	}
	for _, f := range fields {
		if headerWords[strings.ToLower(f)] {
			return true
		}
	}
	return false
}
