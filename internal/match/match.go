// Package match filters directory records by case-insensitive substring
// containment.
//
// The fields consulted for each record kind are declared in fields.go and
// evaluated by one generic routine. Filtering is stable: results keep the
// order of the source collection, and source collections are never
// modified.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// Options tunes an Engine. A limit of zero leaves that kind uncapped.
type Options struct {
	MinQueryLength  int
	EmployeeLimit   int
	SessionLimit    int
	SuggestionLimit int
}

// DefaultOptions returns the directory's long-standing limits.
func DefaultOptions() Options {
	return Options{
		MinQueryLength:  2,
		EmployeeLimit:   5,
		SessionLimit:    10,
		SuggestionLimit: 10,
	}
}

// Engine runs single-field, suggestion and combined searches.
type Engine struct {
	minLen      int
	limits      map[types.Kind]int
	suggestions int
}

// New returns an Engine for opts.
func New(opts Options) *Engine {
	minLen := opts.MinQueryLength
	if minLen < 1 {
		minLen = 1
	}
	return &Engine{
		minLen: minLen,
		limits: map[types.Kind]int{
			types.KindEmployee: opts.EmployeeLimit,
			types.KindSession:  opts.SessionLimit,
		},
		suggestions: opts.SuggestionLimit,
	}
}

// Criteria is a combined search. Each term is optional; supplied terms are
// ANDed together.
type Criteria struct {
	Name    string `json:"name" validate:"max=100"`
	Roll    string `json:"roll" validate:"max=100"`
	Contact string `json:"contact" validate:"max=100"`
}

// Normalize trims and lower-cases every term.
func (c Criteria) Normalize() Criteria {
	return Criteria{
		Name:    strings.ToLower(strings.TrimSpace(c.Name)),
		Roll:    strings.ToLower(strings.TrimSpace(c.Roll)),
		Contact: strings.ToLower(strings.TrimSpace(c.Contact)),
	}
}

// Empty reports whether no term was supplied.
func (c Criteria) Empty() bool {
	return c.Name == "" && c.Roll == "" && c.Contact == ""
}

// Terms returns the supplied terms in input order: name, roll, contact.
func (c Criteria) Terms() []string {
	terms := make([]string, 0, 3)
	for _, t := range []string{c.Name, c.Roll, c.Contact} {
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func (c Criteria) term(cr Criterion) string {
	switch cr {
	case CriterionName:
		return c.Name
	case CriterionRoll:
		return c.Roll
	case CriterionContact:
		return c.Contact
	}
	return ""
}

// MinQueryLength is the shortest query the engine acts on.
func (e *Engine) MinQueryLength() int {
	return e.minLen
}

// Search filters records of kind against a one-box query.
// Queries shorter than the minimum length yield no results.
func (e *Engine) Search(kind types.Kind, records []types.Record, query string) []types.Record {
	return e.search(kind, records, query, e.limits[kind])
}

// Suggest returns the first student name matches for the suggestion list.
func (e *Engine) Suggest(records []types.Record, query string) []types.Record {
	return e.search(types.KindStudent, records, query, e.suggestions)
}

func (e *Engine) search(kind types.Kind, records []types.Record, query string, limit int) []types.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]types.Record, 0)
	if !e.long(q) {
		return out
	}

	fields := singleFields[kind]
	for _, r := range records {
		if anyContains(r, fields, q) {
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Combined filters records of kind with every supplied criterion.
// Kinds without a combined field list yield no results, as does a search
// in which no term reaches the minimum query length.
func (e *Engine) Combined(kind types.Kind, records []types.Record, c Criteria) []types.Record {
	c = c.Normalize()
	out := make([]types.Record, 0)
	if !e.Qualifies(c) {
		return out
	}

	fields, ok := combinedFields[kind]
	if !ok {
		return out
	}

	for _, r := range records {
		if allContain(r, fields, c) {
			out = append(out, r)
		}
	}
	return out
}

// Qualifies reports whether a normalized combined search has at least one
// term long enough to run.
func (e *Engine) Qualifies(c Criteria) bool {
	for _, t := range c.Terms() {
		if e.long(t) {
			return true
		}
	}
	return false
}

// FilterEqual returns the records whose field text equals value exactly.
func FilterEqual(records []types.Record, field, value string) []types.Record {
	out := make([]types.Record, 0)
	for _, r := range records {
		if v, ok := r.Text(field); ok && v == value {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) long(q string) bool {
	return utf8.RuneCountInString(q) >= e.minLen
}

func allContain(r types.Record, fields map[Criterion][]Selector, c Criteria) bool {
	for _, cr := range []Criterion{CriterionName, CriterionRoll, CriterionContact} {
		term := c.term(cr)
		if term == "" {
			continue
		}
		if !anyContains(r, fields[cr], term) {
			return false
		}
	}
	return true
}

// anyContains expects lowerQuery to be lower-cased already.
func anyContains(r types.Record, fields []Selector, lowerQuery string) bool {
	for _, sel := range fields {
		v, ok := sel(r)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(v), lowerQuery) {
			return true
		}
	}
	return false
}
