// Package reference resolves foreign-key ids to display names through the
// small lookup tables delivered with the HR payload.
package reference

import (
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Resolver looks names up in the current store snapshot.
type Resolver struct {
	store storage.Storage
}

// New returns a Resolver reading from store.
func New(store storage.Storage) *Resolver {
	return &Resolver{store: store}
}

// CollegeName returns the college name for id, or "N/A".
func (r *Resolver) CollegeName(id string) string {
	return Resolve(r.store.Colleges(), id)
}

// ProgramName returns the program name for id, or "N/A".
func (r *Resolver) ProgramName(id string) string {
	return Resolve(r.store.Programs(), id)
}

// DepartmentName returns the department name for id, or "N/A".
func (r *Resolver) DepartmentName(id string) string {
	return Resolve(r.store.Departments(), id)
}

// Resolve scans rows for the first one whose id equals id and returns its
// name. Ids are compared by text, so 7 and "7" are the same key.
// An empty id, an empty table, a missing row or a row without a name all
// resolve to "N/A".
func Resolve(rows []types.Record, id string) string {
	if id == "" {
		return types.NotAvailable
	}
	for _, row := range rows {
		if rowID, ok := row.Text("id"); ok && rowID == id {
			return row.TextOr("name", types.NotAvailable)
		}
	}
	return types.NotAvailable
}
