package match

import "github.com/aanand-mishra/student-directory/internal/types"

// Selector reads one searchable value from a record. The second result is
// false when the value is absent; absent values never match.
type Selector func(types.Record) (string, bool)

// Field selects a plain record field.
func Field(name string) Selector {
	return func(r types.Record) (string, bool) {
		return r.Text(name)
	}
}

// DisplayName selects "name", or "first_name last_name" when name is absent.
func DisplayName(r types.Record) (string, bool) {
	return r.DisplayName()
}

// Criterion names one input of a combined search.
type Criterion string

const (
	CriterionName    Criterion = "name"
	CriterionRoll    Criterion = "roll"
	CriterionContact Criterion = "contact"
)

// singleFields lists, per kind, the fields a one-box query is tested
// against. A record matches when any of them contains the query.
var singleFields = map[types.Kind][]Selector{
	types.KindStudent: {
		Field("name"),
	},
	types.KindEmployee: {
		Field("first_name"),
		Field("last_name"),
		Field("email"),
		Field("phone"),
	},
	types.KindSession: {
		Field("name"),
		Field("first_name"),
		Field("last_name"),
		Field("roll_no"),
		Field("user_id"),
		Field("email"),
	},
}

// combinedFields lists, per kind and criterion, the fields a combined
// search criterion is tested against. Numeric student ids are compared
// through their text form.
var combinedFields = map[types.Kind]map[Criterion][]Selector{
	types.KindStudent: {
		CriterionName:    {Field("name")},
		CriterionRoll:    {Field("user_id"), Field("id")},
		CriterionContact: {Field("email"), Field("phone")},
	},
	types.KindSession: {
		CriterionName:    {DisplayName},
		CriterionRoll:    {Field("user_id"), Field("roll_no")},
		CriterionContact: {Field("email"), Field("phone")},
	},
}
