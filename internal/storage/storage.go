// Package storage defines the Storage interface: the read contract every
// search component depends on, and Store, the in-memory snapshot that
// implements it.
//
// Handlers and the search service only know the interface. Tests pass a
// Store filled by hand; the application shell owns the one Store that the
// loaders fill at startup.
package storage

import (
	"sync"
	"time"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// Storage is the read-only view of the directory snapshot.
//
// Returned slices are shared with the store and must not be modified.
// Collections are swapped wholesale by loads, never edited in place, so a
// slice obtained here stays internally consistent for as long as the
// caller holds it.
type Storage interface {
	Students() []types.Record
	Employees() []types.Record
	Colleges() []types.Record
	Programs() []types.Record
	Departments() []types.Record
	Sessions() []types.Record

	// Version reports collection sizes and the last successful load per source.
	Version() Version
}

// Reference groups the four collections delivered by the HR payload.
// They are replaced together.
type Reference struct {
	Programs    []types.Record
	Colleges    []types.Record
	Employees   []types.Record
	Departments []types.Record
}

// Version is a summary of the current snapshot.
type Version struct {
	Students    int `json:"students"`
	Employees   int `json:"employees"`
	Colleges    int `json:"colleges"`
	Programs    int `json:"programs"`
	Departments int `json:"departments"`
	Sessions    int `json:"sessions"`

	// LoadedAt holds the time of the last successful load per source.
	// A source that never loaded is absent.
	LoadedAt map[types.Source]time.Time `json:"loaded_at"`
}

// Store is the concrete, concurrency-safe Storage.
// The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex

	students    []types.Record
	employees   []types.Record
	colleges    []types.Record
	programs    []types.Record
	departments []types.Record
	sessions    []types.Record

	loadedAt map[types.Source]time.Time
	now      func() time.Time
}

// New returns an empty store. Every collection starts as an empty,
// non-nil slice.
func New() *Store {
	return &Store{
		students:    []types.Record{},
		employees:   []types.Record{},
		colleges:    []types.Record{},
		programs:    []types.Record{},
		departments: []types.Record{},
		sessions:    []types.Record{},
		loadedAt:    make(map[types.Source]time.Time),
		now:         time.Now,
	}
}

func (s *Store) Students() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.students
}

func (s *Store) Employees() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees
}

func (s *Store) Colleges() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colleges
}

func (s *Store) Programs() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.programs
}

func (s *Store) Departments() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departments
}

func (s *Store) Sessions() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions
}

// ReplaceStudents swaps the local student roster.
func (s *Store) ReplaceStudents(records []types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = orEmpty(records)
	s.loadedAt[types.SourceLocal] = s.now()
}

// ReplaceSessions swaps the student session collection.
func (s *Store) ReplaceSessions(records []types.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = orEmpty(records)
	s.loadedAt[types.SourceSession] = s.now()
}

// ReplaceStaffAndReference swaps programs, colleges, employees and
// departments in one step. Readers never observe a mix of old and new.
func (s *Store) ReplaceStaffAndReference(ref Reference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.programs = orEmpty(ref.Programs)
	s.colleges = orEmpty(ref.Colleges)
	s.employees = orEmpty(ref.Employees)
	s.departments = orEmpty(ref.Departments)
	s.loadedAt[types.SourceHR] = s.now()
}

// Version returns the current snapshot summary.
func (s *Store) Version() Version {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loadedAt := make(map[types.Source]time.Time, len(s.loadedAt))
	for src, t := range s.loadedAt {
		loadedAt[src] = t
	}

	return Version{
		Students:    len(s.students),
		Employees:   len(s.employees),
		Colleges:    len(s.colleges),
		Programs:    len(s.programs),
		Departments: len(s.departments),
		Sessions:    len(s.sessions),
		LoadedAt:    loadedAt,
	}
}

func orEmpty(records []types.Record) []types.Record {
	if records == nil {
		return []types.Record{}
	}
	return records
}
