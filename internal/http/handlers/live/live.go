// Package live contains the HTTP handlers for type-ahead search sessions.
//
// A client opens a session, posts the search boxes on every keystroke and
// polls the session for the newest result. The session delays, sequences
// and cancels searches so a slow, older search never replaces a newer one.
package live

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-directory/internal/card"
	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/search"
	"github.com/aanand-mishra/student-directory/internal/utils/response"
)

var errNotFound = errors.New("live session not found")

// Registry is the part of search.Registry the handlers use.
type Registry interface {
	Open() (*search.Live, error)
	Get(id string) (*search.Live, bool)
	Close(id string) bool
}

// Opened is returned by Open.
type Opened struct {
	ID string `json:"id"`
}

// Submitted is returned by Submit.
type Submitted struct {
	ID  string `json:"id"`
	Seq uint64 `json:"seq"`
}

// View is a live session snapshot in display form.
type View struct {
	ID        string       `json:"id"`
	Seq       uint64       `json:"seq"`
	Submitted uint64       `json:"submitted"`
	Pending   bool         `json:"pending"`
	Result    *card.Result `json:"result,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// Open handles POST /api/live
// Success response (201 Created): { "id": "<uuid>" }
// 503 Service Unavailable when the session cap is reached or the server
// is shutting down.
func Open(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := reg.Open()
		if err != nil {
			slog.Warn("live session refused", slog.String("error", err.Error()))
			response.Error(w, http.StatusServiceUnavailable, err)
			return
		}
		slog.Info("live session opened", slog.String("id", l.ID()))
		response.WriteJSON(w, http.StatusCreated, Opened{ID: l.ID()})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Submit handles POST /api/live/{id}/query
//
// Request body (JSON):
//
//	{ "name": "raj", "roll": "", "contact": "" }
//
// Success response (202 Accepted): { "id": "...", "seq": 4 }
//
// Error responses:
//
//	400 Bad Request   empty body, malformed JSON, or failed validation
//	404 Not Found     unknown or closed session
//
// ─────────────────────────────────────────────────────────────────────────────
func Submit(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		l, ok := reg.Get(id)
		if !ok {
			response.Error(w, http.StatusNotFound, errNotFound)
			return
		}

		var criteria match.Criteria
		err := json.NewDecoder(r.Body).Decode(&criteria)
		if errors.Is(err, io.EOF) {
			response.Error(w, http.StatusBadRequest, errors.New("request body is empty"))
			return
		}
		if err != nil {
			response.Error(w, http.StatusBadRequest, err)
			return
		}

		if !response.Validate(w, criteria) {
			return
		}

		seq, err := l.Submit(criteria)
		if err != nil {
			// Closed between Get and Submit.
			response.Error(w, http.StatusNotFound, errNotFound)
			return
		}

		slog.Debug("live query submitted", slog.String("id", id), slog.Uint64("seq", seq))
		response.WriteJSON(w, http.StatusAccepted, Submitted{ID: id, Seq: seq})
	}
}

// Get handles GET /api/live/{id}
// Returns the newest published result; "pending" is true while a newer
// submission is still on its way.
func Get(reg Registry, names card.Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		l, ok := reg.Get(id)
		if !ok {
			response.Error(w, http.StatusNotFound, errNotFound)
			return
		}

		snap := l.Latest()
		view := View{
			ID:        id,
			Seq:       snap.Seq,
			Submitted: snap.Submitted,
			Pending:   snap.Pending,
		}
		if snap.Result != nil {
			res := card.FromResult(*snap.Result, names)
			view.Result = &res
			updated := snap.UpdatedAt
			view.UpdatedAt = &updated
		}

		response.WriteJSON(w, http.StatusOK, view)
	}
}

// Close handles DELETE /api/live/{id}
func Close(reg Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		if !reg.Close(id) {
			response.Error(w, http.StatusNotFound, errNotFound)
			return
		}

		slog.Info("live session closed", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}
