// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client. Error
// responses always share one envelope so API consumers know what a failure
// looks like.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a result, a list, a name…).
// Error responses always look like:
//
//	{ "status": "error", "error": "field Name must be at most 100 characters" }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`  // human-readable error detail
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// validate caches struct metadata across requests.
var validate = validator.New()

// WriteJSON writes data as JSON with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into the standard Response shape.
//
//	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// Error writes err in the standard envelope with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	_ = WriteJSON(w, status, GeneralError(err))
}

// Validate checks v against its validate:"..." tags. On failure it writes
// a 400 with ValidationError and returns false.
func Validate(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		Error(w, http.StatusBadRequest, err)
		return false
	}
	_ = WriteJSON(w, http.StatusBadRequest, ValidationError(validateErrs))
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError converts the validator's per-field failures into one
// human-readable Response, one sentence per field joined with ", ".
//
// Example output:
//
//	{ "status": "error", "error": "field Name must be at most 100 characters" }
//
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s characters", e.Field(), e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}
