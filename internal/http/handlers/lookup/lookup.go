// Package lookup contains the HTTP handlers that search the directory.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN
// ────────────────────────────────────────────────────────────
// Each exported function receives its dependencies once, at route
// registration, and returns the http.HandlerFunc the router calls on every
// request:
//
//	router.HandleFunc("GET /api/search", lookup.Combined(searcher, resolver))
package lookup

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-directory/internal/aggregate"
	"github.com/aanand-mishra/student-directory/internal/card"
	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/search"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/utils/response"
)

// Searcher is what the handlers need from the search service.
type Searcher interface {
	Students(query string) []types.Record
	Suggest(query string) []types.Record
	Employees(query string) []types.Record
	Sessions(query string) []types.Record
	SessionsWhere(f search.SessionFilter) []types.Record
	Combined(c match.Criteria) aggregate.Result
}

// query is the single search box.
type query struct {
	Q string `validate:"max=100"`
}

// List is the response of the single-source endpoints.
type List struct {
	Query string      `json:"query"`
	Count int         `json:"count"`
	Cards []card.Card `json:"cards"`
}

// Suggestion is one entry of the name suggestion list.
type Suggestion struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
	Label  string `json:"label"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Combined handles GET /api/search?name=&roll=&contact=
// Runs the combined search over the roster, the session records and, when
// a name is given, HR staff.
//
// Success response (200 OK):
//
//	{ "criteria": {...}, "groups": [ { "source": "local", "label": "...",
//	  "count": 1, "cards": [...] } ], "no_results": false }
//
// Error responses:
//
//	400 Bad Request   a term longer than 100 characters
//
// ─────────────────────────────────────────────────────────────────────────────
func Combined(s Searcher, names card.Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		criteria := match.Criteria{
			Name:    q.Get("name"),
			Roll:    q.Get("roll"),
			Contact: q.Get("contact"),
		}

		// Terms can be emails or phone numbers; only DEBUG carries them.
		slog.Info("combined search",
			slog.Bool("name", criteria.Name != ""),
			slog.Bool("roll", criteria.Roll != ""),
			slog.Bool("contact", criteria.Contact != ""))
		slog.Debug("combined search terms",
			slog.String("name", criteria.Name),
			slog.String("roll", criteria.Roll),
			slog.String("contact", criteria.Contact))

		if !response.Validate(w, criteria) {
			return
		}

		res := s.Combined(criteria)
		response.WriteJSON(w, http.StatusOK, card.FromResult(res, names))
	}
}

// Students handles GET /api/students/search?q=
// Name search over the local roster; every match is returned.
func Students(s Searcher) http.HandlerFunc {
	return listHandler("student search", s.Students, types.SourceLocal, nil)
}

// Employees handles GET /api/employees/search?q=
// Matches first name, last name, email or phone; at most five results.
func Employees(s Searcher, names card.Names) http.HandlerFunc {
	return listHandler("employee search", s.Employees, types.SourceHR, names)
}

// Sessions handles GET /api/sessions/search?q=
// Matches name, roll number, user id or email; at most ten results.
func Sessions(s Searcher) http.HandlerFunc {
	return listHandler("session search", s.Sessions, types.SourceSession, nil)
}

func listHandler(op string, find func(string) []types.Record, src types.Source, names card.Names) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := query{Q: r.URL.Query().Get("q")}
		slog.Info(op, slog.Int("q_len", len(q.Q)))
		slog.Debug(op+" query", slog.String("q", q.Q))

		if !response.Validate(w, q) {
			return
		}

		records := find(q.Q)
		response.WriteJSON(w, http.StatusOK, List{
			Query: q.Q,
			Count: len(records),
			Cards: card.List(src, records, names),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Suggest handles GET /api/students/suggest?q=
// Feeds the type-ahead dropdown of the name box.
//
// Success response (200 OK):
//
//	[ { "name": "Rajesh Kumar", "user_id": "2301001",
//	    "label": "Rajesh Kumar - 2301001" } ]
//
// Returns [] for queries shorter than two characters.
// ─────────────────────────────────────────────────────────────────────────────
func Suggest(s Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := query{Q: r.URL.Query().Get("q")}

		if !response.Validate(w, q) {
			return
		}

		records := s.Suggest(q.Q)
		out := make([]Suggestion, 0, len(records))
		for _, rec := range records {
			name, _ := rec.Text("name")
			userID := rec.TextOr("user_id", types.NotAvailable)
			out = append(out, Suggestion{
				Name:   name,
				UserID: userID,
				Label:  name + " - " + userID,
			})
		}

		response.WriteJSON(w, http.StatusOK, out)
	}
}

// SessionsByFilter handles GET /api/sessions?college_id=&department_id=&class_id=
// Lists session records by exact foreign key. Without any parameter it
// lists every session record.
func SessionsByFilter(s Searcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := search.SessionFilter{
			CollegeID:    q.Get("college_id"),
			DepartmentID: q.Get("department_id"),
			ClassID:      q.Get("class_id"),
		}
		slog.Info("listing sessions",
			slog.String("college_id", f.CollegeID),
			slog.String("department_id", f.DepartmentID),
			slog.String("class_id", f.ClassID))

		if !response.Validate(w, f) {
			return
		}

		records := s.SessionsWhere(f)
		response.WriteJSON(w, http.StatusOK, List{
			Count: len(records),
			Cards: card.List(types.SourceSession, records, nil),
		})
	}
}
