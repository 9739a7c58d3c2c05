// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// storage, loader, match, aggregate and the handlers all import types
// without depending on each other.
package types

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is the neutral value shown for any absent field or any
// foreign key that does not resolve.
const NotAvailable = "N/A"

// Kind is a category of record with its own field schema.
type Kind string

const (
	KindStudent   Kind = "student"
	KindEmployee  Kind = "employee"
	KindSession   Kind = "session"
	KindReference Kind = "reference"
)

// Source is the collection a match came from. Aggregated results are
// grouped and ordered by source.
type Source string

const (
	SourceLocal   Source = "local"
	SourceSession Source = "session"
	SourceHR      Source = "hr"
)

// Record is one loosely-typed row as delivered by a remote API or the
// local roster. The schema belongs to the remote side and is never
// validated locally: every field is optional.
//
// Records decoded by the loader keep numbers as json.Number so that ids
// like 2301004 round-trip as text without a float detour.
type Record map[string]any

// Text returns the canonical text form of a scalar field.
//
// The second result is false when the field is absent, nil, an empty
// string, or not a scalar (objects and arrays). Callers treat that as
// "not available", never as an error.
func (r Record) Text(field string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r[field]
	if !ok {
		return "", false
	}
	s, ok := scalarText(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// TextOr returns the field text or fallback when the field is absent.
func (r Record) TextOr(field, fallback string) string {
	if s, ok := r.Text(field); ok {
		return s
	}
	return fallback
}

// Has reports whether the field carries a displayable value.
func (r Record) Has(field string) bool {
	_, ok := r.Text(field)
	return ok
}

// DisplayName returns name, or "first_name last_name" trimmed when name is
// absent. Session and employee rows use either shape.
func (r Record) DisplayName() (string, bool) {
	if name, ok := r.Text("name"); ok {
		return name, true
	}
	first, _ := r.Text("first_name")
	last, _ := r.Text("last_name")
	full := strings.TrimSpace(first + " " + last)
	return full, full != ""
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case []byte:
		return string(t), true
	case time.Time:
		return t.Format(time.RFC3339), true
	default:
		return "", false
	}
}
