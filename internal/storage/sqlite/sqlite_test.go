package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRoster(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roster.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE students (
			id      INTEGER PRIMARY KEY,
			user_id TEXT,
			name    TEXT,
			email   TEXT,
			phone   TEXT
		)
	`)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO students (id, user_id, name, email, phone) VALUES
			(1001, '2301001', 'Rajesh Kumar', 'rajesh@example.edu', NULL),
			(1002, '2301002', 'Priya Sharma', NULL, '9876500002')`,
	)
	require.NoError(t, err)

	return path
}

func TestStudents(t *testing.T) {
	ctx := context.Background()
	path := seedRoster(t)

	db, err := New(ctx, path, "students")
	require.NoError(t, err)
	defer db.Close()

	records, err := db.Students(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	name, ok := first.Text("name")
	assert.True(t, ok)
	assert.Equal(t, "Rajesh Kumar", name)

	id, ok := first.Text("id")
	assert.True(t, ok)
	assert.Equal(t, "1001", id)

	// NULL columns are left out and read as absent.
	_, ok = first.Text("phone")
	assert.False(t, ok)
	_, present := first["phone"]
	assert.False(t, present)

	phone, ok := records[1].Text("phone")
	assert.True(t, ok)
	assert.Equal(t, "9876500002", phone)
}

func TestStudentsUnknownTable(t *testing.T) {
	ctx := context.Background()
	path := seedRoster(t)

	db, err := New(ctx, path, "nope")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Students(ctx)
	assert.Error(t, err)
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing.db"), "students")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"students"`, quoteIdent("students"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}
