// Package aggregate composes per-source match lists into one ordered,
// labeled result.
//
// Composition is purely presentational: groups are never merged or
// deduplicated, even when the same person appears in several sources.
package aggregate

import (
	"strings"

	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Group is one source's matches.
type Group struct {
	Source  types.Source   `json:"source"`
	Label   string         `json:"label"`
	Records []types.Record `json:"records"`
}

// Result is the composed outcome of a combined search. Either Groups is
// non-empty, or NoResults is set and Message echoes the query terms.
type Result struct {
	Criteria  match.Criteria `json:"criteria"`
	Groups    []Group        `json:"groups"`
	NoResults bool           `json:"no_results"`
	Message   string         `json:"message,omitempty"`
}

// Matches carries the per-source lists handed to Combine.
type Matches struct {
	Local     []types.Record
	Sessions  []types.Record
	Employees []types.Record
}

var labels = map[types.Source]string{
	types.SourceLocal:   "Local Student Records",
	types.SourceSession: "Student Session Records",
	types.SourceHR:      "HR/Staff Results",
}

// Label returns the display label of a source group.
func Label(src types.Source) string {
	return labels[src]
}

// Combine orders the groups local, session, HR and omits empty ones.
// When every source is empty the result is a single "no results" outcome.
func Combine(c match.Criteria, m Matches) Result {
	res := Result{Criteria: c, Groups: make([]Group, 0, 3)}

	for _, g := range []Group{
		{Source: types.SourceLocal, Records: m.Local},
		{Source: types.SourceSession, Records: m.Sessions},
		{Source: types.SourceHR, Records: m.Employees},
	} {
		if len(g.Records) == 0 {
			continue
		}
		g.Label = labels[g.Source]
		res.Groups = append(res.Groups, g)
	}

	if len(res.Groups) == 0 {
		res.NoResults = true
		res.Message = NoResultsMessage(c)
	}
	return res
}

// NoResultsMessage echoes the supplied terms, each quoted, comma-joined.
func NoResultsMessage(c match.Criteria) string {
	terms := c.Terms()
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + t + `"`
	}
	return "No matches for " + strings.Join(quoted, ", ")
}
