// Package card turns directory records into presentation-neutral cards:
// a title, an optional status badge and an ordered list of labeled values.
// Front ends render cards however they like.
package card

import (
	"strings"
	"time"

	"github.com/aanand-mishra/student-directory/internal/aggregate"
	"github.com/aanand-mishra/student-directory/internal/match"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Card is the display model of one record.
type Card struct {
	Kind     types.Kind `json:"kind"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Status   *Status    `json:"status,omitempty"`
	Fields   []Field    `json:"fields"`
}

// Status is the badge shown next to the title.
type Status struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// Field is one labeled value. Href is set for mail and phone links.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Href  string `json:"href,omitempty"`
}

// Names resolves foreign keys shown on employee cards.
type Names interface {
	CollegeName(id string) string
	DepartmentName(id string) string
}

// Student builds a local roster card. Every field is always listed and
// falls back to "N/A".
func Student(r types.Record) Card {
	status := r.TextOr("status", "Unknown")

	address, ok := r.Text("address")
	if !ok {
		address = r.TextOr("current_address", types.NotAvailable)
	}

	return Card{
		Kind:     types.KindStudent,
		Title:    r.TextOr("name", types.NotAvailable),
		Subtitle: "User ID: " + r.TextOr("user_id", types.NotAvailable) + " | Student ID: " + r.TextOr("id", types.NotAvailable),
		Status:   &Status{Text: status, Active: status == "ACTIVE"},
		Fields: []Field{
			{Label: "Email", Value: r.TextOr("email", types.NotAvailable)},
			{Label: "Phone", Value: r.TextOr("phone", types.NotAvailable)},
			{Label: "Gender", Value: r.TextOr("gender", types.NotAvailable)},
			{Label: "Date of Birth", Value: dateOr(r, "dob")},
			{Label: "Father's Name", Value: r.TextOr("father_name", types.NotAvailable)},
			{Label: "Mother's Name", Value: r.TextOr("mother_name", types.NotAvailable)},
			{Label: "Address", Value: address},
			{Label: "Aadhar Number", Value: r.TextOr("aadhar_number", types.NotAvailable)},
			{Label: "Religion", Value: r.TextOr("religion", types.NotAvailable)},
			{Label: "Nationality", Value: r.TextOr("nationality", types.NotAvailable)},
			{Label: "Joining Date", Value: dateOr(r, "joining_date")},
			{Label: "Year of Admission", Value: r.TextOr("year_of_admission", types.NotAvailable)},
			{Label: "Admission Type", Value: r.TextOr("admission_type", types.NotAvailable)},
			{Label: "Application Status", Value: r.TextOr("application_status", types.NotAvailable)},
			{Label: "Current Year", Value: r.TextOr("current_year", types.NotAvailable)},
			{Label: "Current Semester", Value: r.TextOr("current_semester", types.NotAvailable)},
		},
	}
}

// unresolved stands in for a nil Names: colleges read "N/A" and
// departments keep their raw id.
type unresolved struct{}

func (unresolved) CollegeName(string) string    { return types.NotAvailable }
func (unresolved) DepartmentName(string) string { return types.NotAvailable }

// Employee builds an HR/staff card. Employee ID and College are always
// listed; the rest only when present. names may be nil.
func Employee(r types.Record, names Names) Card {
	if names == nil {
		names = unresolved{}
	}
	first, _ := r.Text("first_name")
	last, _ := r.Text("last_name")
	title := strings.TrimSpace(first + " " + last)

	fields := []Field{
		{Label: "Employee ID", Value: r.TextOr("user_id", types.NotAvailable)},
	}
	fields = appendLink(fields, r, "email", "Email", "mailto:")
	fields = appendLink(fields, r, "phone", "Phone", "tel:")
	fields = appendOptional(fields, r, "role", "Role/Designation")

	if dept, ok := r.Text("department_id"); ok {
		// Unknown departments keep showing their raw id.
		name := names.DepartmentName(dept)
		if name == types.NotAvailable {
			name = dept
		}
		fields = append(fields, Field{Label: "Department", Value: name})
	}

	college, _ := r.Text("college_id")
	fields = append(fields, Field{Label: "College", Value: names.CollegeName(college)})

	fields = appendOptional(fields, r, "employee_type", "Employment Type")
	fields = appendDate(fields, r, "date_of_joining", "Date of Joining")
	fields = appendOptional(fields, r, "qualification", "Qualification")
	fields = appendOptional(fields, r, "work_experience", "Work Experience")

	return Card{
		Kind:     types.KindEmployee,
		Title:    title,
		Subtitle: "Employee/Staff",
		Fields:   fields,
	}
}

// Session builds a student session card listing only present fields.
func Session(r types.Record) Card {
	title, _ := r.DisplayName()

	var fields []Field
	fields = appendOptional(fields, r, "roll_no", "Roll No")
	fields = appendOptional(fields, r, "user_id", "User ID")
	fields = appendLink(fields, r, "email", "Email", "mailto:")
	fields = appendLink(fields, r, "phone", "Phone", "tel:")
	fields = appendOptional(fields, r, "college_id", "College ID")
	fields = appendOptional(fields, r, "department_id", "Department ID")
	fields = appendOptional(fields, r, "class_id", "Class ID")
	fields = appendOptional(fields, r, "session", "Session")
	fields = appendDate(fields, r, "enrollment_date", "Enrollment Date")

	c := Card{
		Kind:     types.KindSession,
		Title:    title,
		Subtitle: "Student Session Record",
		Fields:   fields,
	}
	if c.Fields == nil {
		c.Fields = []Field{}
	}
	if status, ok := r.Text("status"); ok {
		c.Status = &Status{Text: status, Active: status == "active"}
	}
	return c
}

func appendOptional(fields []Field, r types.Record, key, label string) []Field {
	if v, ok := r.Text(key); ok {
		fields = append(fields, Field{Label: label, Value: v})
	}
	return fields
}

func appendLink(fields []Field, r types.Record, key, label, scheme string) []Field {
	if v, ok := r.Text(key); ok {
		fields = append(fields, Field{Label: label, Value: v, Href: scheme + v})
	}
	return fields
}

func appendDate(fields []Field, r types.Record, key, label string) []Field {
	if v, ok := r.Text(key); ok {
		fields = append(fields, Field{Label: label, Value: FormatDate(v)})
	}
	return fields
}

func dateOr(r types.Record, key string) string {
	if v, ok := r.Text(key); ok {
		return FormatDate(v)
	}
	return types.NotAvailable
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders a date as "2 Jan 2006". Values in an unknown layout
// are returned unchanged.
func FormatDate(v string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2 Jan 2006")
		}
	}
	return v
}

// Group is an aggregated source group in display form.
type Group struct {
	Source types.Source `json:"source"`
	Label  string       `json:"label"`
	Count  int          `json:"count"`
	Cards  []Card       `json:"cards"`
}

// Result is an aggregated search result in display form.
type Result struct {
	Criteria  match.Criteria `json:"criteria"`
	Groups    []Group        `json:"groups"`
	NoResults bool           `json:"no_results"`
	Message   string         `json:"message,omitempty"`
}

// FromResult renders every group of res, keeping group order.
func FromResult(res aggregate.Result, names Names) Result {
	out := Result{
		Criteria:  res.Criteria,
		Groups:    make([]Group, 0, len(res.Groups)),
		NoResults: res.NoResults,
		Message:   res.Message,
	}
	for _, g := range res.Groups {
		out.Groups = append(out.Groups, Group{
			Source: g.Source,
			Label:  g.Label,
			Count:  len(g.Records),
			Cards:  List(g.Source, g.Records, names),
		})
	}
	return out
}

// List renders records from src with the card builder for that source.
func List(src types.Source, records []types.Record, names Names) []Card {
	cards := make([]Card, 0, len(records))
	for _, r := range records {
		switch src {
		case types.SourceLocal:
			cards = append(cards, Student(r))
		case types.SourceSession:
			cards = append(cards, Session(r))
		case types.SourceHR:
			cards = append(cards, Employee(r, names))
		}
	}
	return cards
}
