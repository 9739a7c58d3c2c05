package directory_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/http/handlers/directory"
	"github.com/aanand-mishra/student-directory/internal/reference"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

type fixedCounter int

func (c fixedCounter) Len() int { return int(c) }

func router(store *storage.Store) *http.ServeMux {
	names := reference.New(store)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/colleges/{id}", directory.College(names))
	mux.HandleFunc("GET /api/programs/{id}", directory.Program(names))
	mux.HandleFunc("GET /api/departments/{id}", directory.Department(names))
	mux.HandleFunc("GET /api/status", directory.StatusHandler(store, fixedCounter(2)))
	return mux
}

func TestResolve(t *testing.T) {
	store := storage.New()
	store.ReplaceStaffAndReference(storage.Reference{
		Colleges:    []types.Record{{"id": json.Number("1111000"), "name": "College of Engineering"}},
		Programs:    []types.Record{{"id": json.Number("3"), "name": "B.Tech CSE"}},
		Departments: []types.Record{{"id": "18", "name": "Computer Science"}},
	})
	mux := router(store)

	tests := []struct {
		target string
		want   directory.Name
	}{
		{"/api/colleges/1111000", directory.Name{ID: "1111000", Name: "College of Engineering"}},
		{"/api/programs/3", directory.Name{ID: "3", Name: "B.Tech CSE"}},
		{"/api/departments/18", directory.Name{ID: "18", Name: "Computer Science"}},
		{"/api/departments/99", directory.Name{ID: "99", Name: types.NotAvailable}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			var got directory.Name
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus(t *testing.T) {
	store := storage.New()
	store.ReplaceStudents([]types.Record{{"name": "Rajesh Kumar"}, {"name": "Priya Sharma"}})
	mux := router(store)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got directory.Status
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 2, got.Snapshot.Students)
	assert.Zero(t, got.Snapshot.Employees)
	assert.Equal(t, 2, got.LiveSessions)
	assert.Contains(t, got.Snapshot.LoadedAt, types.SourceLocal)
	assert.NotContains(t, got.Snapshot.LoadedAt, types.SourceHR)
}
