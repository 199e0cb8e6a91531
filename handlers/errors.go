// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/innitec-lgtm/SupportCenter-v1/middleware"
	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/store"
)

// validationErrors are caller mistakes reported as 400 with their message
var validationErrors = []error{
	models.ErrInvalidUrgency,
	models.ErrInvalidStatus,
	models.ErrSignatureRequired,
	models.ErrInvalidSignature,
	models.ErrMissingField,
	models.ErrEngineerNotFound,
	models.ErrDuplicateEngineer,
	models.ErrImmutableRequested,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseBody decodes the request body, answering 400 when it is not JSON
func parseBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.ParseJSONBody(r, v); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// writeStoreError maps store and model errors to responses
func writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrTicketNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, models.ErrEngineerNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Engineer not found")
	case errors.Is(err, store.ErrUnreadable):
		slog.Error("refusing to overwrite unreadable document", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Stored data could not be read, changes are paused")
	case errors.Is(err, store.ErrRevisionMismatch):
		middleware.ErrorResponse(w, http.StatusPreconditionFailed, "Collection changed since it was read, reload and retry")
	case isValidationError(err):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// precondition reads If-Match, answering 400 when it is malformed
func precondition(w http.ResponseWriter, r *http.Request) (*uint64, bool) {
	expected, err := middleware.IfMatch(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return expected, true
}
