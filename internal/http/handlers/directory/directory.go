// Package directory contains the HTTP handlers that describe the loaded
// snapshot and resolve reference ids to names.
package directory

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/utils/response"
)

// Names resolves reference ids.
type Names interface {
	CollegeName(id string) string
	ProgramName(id string) string
	DepartmentName(id string) string
}

// Counter reports the number of open live sessions.
type Counter interface {
	Len() int
}

// Status is the body of GET /api/status.
type Status struct {
	Status       string          `json:"status"`
	Snapshot     storage.Version `json:"snapshot"`
	LiveSessions int             `json:"live_sessions"`
}

// Name is the body of the reference resolution endpoints.
type Name struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StatusHandler handles GET /api/status.
// Until the startup loads finish, the counts read zero.
func StatusHandler(store storage.Storage, live Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, Status{
			Status:       response.StatusOK,
			Snapshot:     store.Version(),
			LiveSessions: live.Len(),
		})
	}
}

// College handles GET /api/colleges/{id}
// Always 200; unknown ids resolve to "N/A".
func College(names Names) http.HandlerFunc {
	return resolveHandler("college", names.CollegeName)
}

// Program handles GET /api/programs/{id}
func Program(names Names) http.HandlerFunc {
	return resolveHandler("program", names.ProgramName)
}

// Department handles GET /api/departments/{id}
func Department(names Names) http.HandlerFunc {
	return resolveHandler("department", names.DepartmentName)
}

func resolveHandler(kind string, resolve func(string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("resolving reference", slog.String("kind", kind), slog.String("id", id))

		response.WriteJSON(w, http.StatusOK, Name{ID: id, Name: resolve(id)})
	}
}
