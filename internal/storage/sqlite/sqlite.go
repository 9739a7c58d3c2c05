// Package sqlite reads the local student roster from a SQLite database
// file using Go's standard database/sql package.
//
// The roster is read once at startup and handed to the in-memory store;
// nothing is ever written back. Columns are not fixed: every column of
// the roster table becomes a field of the resulting record, mirroring the
// loosely-typed JSON roster.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a read-only roster source.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db    *sql.DB
	table string
}

// New opens the SQLite database at path in read-only mode and verifies
// that it is reachable.
//
// sql.Open alone does not touch the file, so a Ping follows: a roster path
// that does not exist should fail here, not on the first query.
func New(ctx context.Context, path, table string) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: ping: %w", err)
	}

	return &SQLite{Db: db, table: table}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Students returns every row of the roster table as a types.Record.
//
// HOW GENERIC SCANNING WORKS:
// ───────────────────────────
// The column list is only known at run time, so each row is scanned into a
// slice of `any` (one slot per column) and then copied into a map keyed by
// column name. The driver hands back int64, float64, string, []byte, bool,
// time.Time or nil; Record.Text understands all of them. NULL columns are
// left out of the record so that they read as absent.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Students(ctx context.Context) ([]types.Record, error) {
	// The table name comes from configuration, not from user input, but it
	// still cannot be a placeholder, so it is quoted as an identifier.
	query := "SELECT * FROM " + quoteIdent(s.table)

	rows, err := s.Db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Students: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("Students: columns: %w", err)
	}

	records := make([]types.Record, 0)

	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("Students: scan row: %w", err)
		}

		record := make(types.Record, len(columns))
		for i, col := range columns {
			if values[i] == nil {
				continue
			}
			// TEXT columns may come back as []byte depending on the
			// declared column type; normalise to string.
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
				continue
			}
			record[col] = values[i]
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Students: rows iteration: %w", err)
	}

	return records, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
