// Package search answers directory queries against the current store
// snapshot and runs live (type-ahead) search sessions.
package search

import (
	"github.com/aanand-mishra/student-directory/internal/aggregate"
	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Service ties the match engine to a store.
type Service struct {
	store  storage.Storage
	engine *match.Engine
}

// New returns a Service over store.
func New(store storage.Storage, engine *match.Engine) *Service {
	return &Service{store: store, engine: engine}
}

// Students searches the local roster by name. Results are uncapped.
func (s *Service) Students(query string) []types.Record {
	return s.engine.Search(types.KindStudent, s.store.Students(), query)
}

// Suggest returns the first few roster name matches.
func (s *Service) Suggest(query string) []types.Record {
	return s.engine.Suggest(s.store.Students(), query)
}

// Employees searches HR staff.
func (s *Service) Employees(query string) []types.Record {
	return s.engine.Search(types.KindEmployee, s.store.Employees(), query)
}

// Sessions searches student session records.
func (s *Service) Sessions(query string) []types.Record {
	return s.engine.Search(types.KindSession, s.store.Sessions(), query)
}

// SessionFilter selects session records by exact foreign key.
// Empty fields do not filter.
type SessionFilter struct {
	CollegeID    string `validate:"max=64"`
	DepartmentID string `validate:"max=64"`
	ClassID      string `validate:"max=64"`
}

// SessionsWhere returns the session records matching every non-empty
// field of f, in collection order.
func (s *Service) SessionsWhere(f SessionFilter) []types.Record {
	records := s.store.Sessions()
	for _, cond := range []struct{ field, value string }{
		{"college_id", f.CollegeID},
		{"department_id", f.DepartmentID},
		{"class_id", f.ClassID},
	} {
		if cond.value != "" {
			records = match.FilterEqual(records, cond.field, cond.value)
		}
	}
	return records
}

// Combined runs a combined search over every source and composes the
// result. Staff are only searched when a name term is supplied.
//
// A search with no terms at all yields an empty result without the
// "no results" outcome: there is nothing to report on.
func (s *Service) Combined(c match.Criteria) aggregate.Result {
	c = c.Normalize()
	if c.Empty() {
		return aggregate.Result{Criteria: c, Groups: []aggregate.Group{}}
	}

	m := aggregate.Matches{
		Local:    s.engine.Combined(types.KindStudent, s.store.Students(), c),
		Sessions: s.engine.Combined(types.KindSession, s.store.Sessions(), c),
	}
	if c.Name != "" {
		m.Employees = s.engine.Search(types.KindEmployee, s.store.Employees(), c.Name)
	}

	return aggregate.Combine(c, m)
}
