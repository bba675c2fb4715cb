package handler

// RESPONSE HELPERS:
// These functions standardise how we read requests and send JSON responses.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the API has the same shape:
//   {"error": "missing_field", "message": "missing required fields: email", "fields": ["email"]}
//
// "fields" is only present for missing_field errors. The frontend shows the
// message and highlights the listed inputs.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/club-roster/internal/apperror"
)

// maxBodyBytes caps request bodies. Every payload of this API is a small
// JSON object.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string   `json:"error"`            // Machine-readable error type (e.g., "not_found")
	Message string   `json:"message"`          // Human-readable description
	Fields  []string `json:"fields,omitempty"` // Missing request fields, in request order
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written. Once Encode
// writes, the headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorMapping is one row of the domain error → HTTP table.
type errorMapping struct {
	target error
	status int
	code   string
}

// ERROR MAPPING:
// Checked in order with errors.Is. ErrUnexpected comes first: an unexpected
// store failure wraps its cause, and that cause must never decide the status.
var errorMappings = []errorMapping{
	{apperror.ErrUnexpected, http.StatusBadRequest, "unexpected_error"},
	{apperror.ErrMissingField, http.StatusBadRequest, "missing_field"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrDuplicate, http.StatusBadRequest, "duplicate_identity"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{apperror.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// The service layer never knows about HTTP. It returns apperror values, and
// this is the single place where they become status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				writeJSON(w, m.status, ErrorResponse{
					Error:   m.code,
					Message: appErr.Message,
					Fields:  appErr.Fields,
				})
				return
			}
		}
	}

	// Unknown error: generic 500.
	// NEVER expose internal error details to the client, the raw message can
	// contain SQL or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads the request body into dst. An empty body leaves dst at
// its zero value, so a POST without a body reports the missing fields
// instead of a JSON syntax error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// pageParams reads ?limit= and ?offset=. Bad or absent values become 0 and
// the service applies its defaults.
func pageParams(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}
