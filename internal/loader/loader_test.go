package loader

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/config"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve returns a server that answers every request with status and body.
func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLoader(store *storage.Store, sources config.Sources) *Loader {
	if sources.Timeout == 0 {
		sources.Timeout = 2 * time.Second
	}
	if sources.StudentsTable == "" {
		sources.StudentsTable = "students"
	}
	return New(store, sources, nil, quietLogger())
}

func TestLoadStaffAndReference(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"success": true,
		"program": [{"id": 1, "name": "B.Tech"}],
		"college": [{"id": 1111000, "name": "College of Engineering"}],
		"staff": [{"first_name": "Alice"}, {"first_name": "Bob"}]
	}`)

	store := storage.New()
	out := newLoader(store, config.Sources{HRURL: srv.URL}).LoadStaffAndReference(context.Background())

	assert.True(t, out.OK)
	assert.Equal(t, types.SourceHR, out.Source)
	assert.Equal(t, 2, out.Count)
	assert.Len(t, store.Employees(), 2)
	assert.Len(t, store.Programs(), 1)
	assert.Len(t, store.Colleges(), 1)
	assert.Empty(t, store.Departments())

	// Numbers keep their exact text.
	id, _ := store.Colleges()[0].Text("id")
	assert.Equal(t, "1111000", id)
}

func TestLoadStaffAndReferenceUnsuccessful(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success": false, "staff": [{"first_name": "Alice"}]}`)

	store := storage.New()
	var out Outcome
	assert.NotPanics(t, func() {
		out = newLoader(store, config.Sources{HRURL: srv.URL}).LoadStaffAndReference(context.Background())
	})

	assert.False(t, out.OK)
	assert.Contains(t, out.Reason, "success=false")
	assert.Empty(t, store.Employees())
	assert.Empty(t, store.Colleges())
	assert.Empty(t, store.Programs())
	assert.Empty(t, store.Departments())
}

func TestFailedLoadKeepsPreviousData(t *testing.T) {
	store := storage.New()
	store.ReplaceSessions([]types.Record{{"name": "Earlier"}})

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unsuccessful", http.StatusOK, `{"success": false}`},
		{"malformed", http.StatusOK, `{"data": [`},
		{"server error", http.StatusInternalServerError, `[]`},
		{"not json", http.StatusOK, `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			out := newLoader(store, config.Sources{SessionsURL: srv.URL}).LoadSessions(context.Background())

			assert.False(t, out.OK)
			assert.NotEmpty(t, out.Reason)
			require.Len(t, store.Sessions(), 1)
			assert.Equal(t, "Earlier", store.Sessions()[0]["name"])
		})
	}
}

func TestLoadSessionsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"name": "a"}, {"name": "b"}]`, 2},
		{"data key", `{"success": true, "data": [{"name": "a"}]}`, 1},
		{"students key", `{"students": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`, 3},
		{"data preferred", `{"data": [{"name": "a"}], "students": [{"name": "b"}, {"name": "c"}]}`, 1},
		{"null data falls back", `{"data": null, "students": [{"name": "b"}]}`, 1},
		{"neither key", `{"success": true}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			store := storage.New()

			out := newLoader(store, config.Sources{SessionsURL: srv.URL}).LoadSessions(context.Background())

			assert.True(t, out.OK, out.Reason)
			assert.Equal(t, tt.want, out.Count)
			assert.Len(t, store.Sessions(), tt.want)
		})
	}
}

func TestLoadPrimaryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data_of_student.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{"data": [{"id": 1001, "name": "Rajesh Kumar"}]}`), 0o600))

	store := storage.New()
	out := newLoader(store, config.Sources{StudentsPath: path}).LoadPrimary(context.Background())

	assert.True(t, out.OK, out.Reason)
	require.Len(t, store.Students(), 1)
	assert.Equal(t, "Rajesh Kumar", store.Students()[0]["name"])
}

func TestLoadPrimaryMissingFile(t *testing.T) {
	store := storage.New()
	store.ReplaceStudents([]types.Record{{"name": "Earlier"}})

	out := newLoader(store, config.Sources{StudentsPath: filepath.Join(t.TempDir(), "nope.txt")}).LoadPrimary(context.Background())

	assert.False(t, out.OK)
	assert.Len(t, store.Students(), 1)
}

func TestLoadPrimaryFromURL(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"data": [{"name": "a"}, {"name": "b"}]}`)

	store := storage.New()
	out := newLoader(store, config.Sources{StudentsPath: srv.URL + "/data_of_student.txt"}).LoadPrimary(context.Background())

	assert.True(t, out.OK, out.Reason)
	assert.Len(t, store.Students(), 2)
}

func TestLoadPrimaryFromSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE roster (id INTEGER, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO roster VALUES (1, 'Rajesh Kumar'), (2, 'Priya Sharma')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	store := storage.New()
	out := newLoader(store, config.Sources{StudentsPath: path, StudentsTable: "roster"}).LoadPrimary(context.Background())

	assert.True(t, out.OK, out.Reason)
	assert.Len(t, store.Students(), 2)
}

func TestLoadAll(t *testing.T) {
	hr := serve(t, http.StatusOK, `{"success": false}`)
	sessions := serve(t, http.StatusOK, `[{"name": "a"}]`)
	path := filepath.Join(t.TempDir(), "students.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data": []}`), 0o600))

	store := storage.New()
	outcomes := newLoader(store, config.Sources{
		StudentsPath: path,
		HRURL:        hr.URL,
		SessionsURL:  sessions.URL,
	}).LoadAll(context.Background())

	require.Len(t, outcomes, 3)
	assert.Equal(t, types.SourceLocal, outcomes[0].Source)
	assert.True(t, outcomes[0].OK)
	assert.Equal(t, types.SourceHR, outcomes[1].Source)
	assert.False(t, outcomes[1].OK)
	assert.Equal(t, types.SourceSession, outcomes[2].Source)
	assert.True(t, outcomes[2].OK)

	assert.Len(t, store.Sessions(), 1)
	assert.Empty(t, store.Employees())
}

func TestIsSQLite(t *testing.T) {
	assert.True(t, isSQLite("roster.db"))
	assert.True(t, isSQLite("ROSTER.SQLite3"))
	assert.False(t, isSQLite("data_of_student.txt"))
}
