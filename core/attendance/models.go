package attendance

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"

	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Column is one of the six report columns, in display order.
type Column struct {
	Key   string
	Title string
}

var Columns = []Column{
	{Key: "datetime", Title: "DateTime"},
	{Key: "student_id", Title: "Student ID"},
	{Key: "last", Title: "Last Name"},
	{Key: "first", Title: "First Name"},
	{Key: "year_section", Title: "Year & Section"},
	{Key: "status", Title: "Status"},
}

// ColumnTitles returns the human readable column titles in display order.
func ColumnTitles() []string {
	titles := make([]string, 0, len(Columns))
	for _, c := range Columns {
		titles = append(titles, c.Title)
	}
	return titles
}

// Criteria holds the report's selection constraints. Zero fields mean "no constraint".
// Dates are calendar days; only their year, month and day are used.
type Criteria struct {
	Section      string
	AcademicYear string
	Semester     string
	StartDate    time.Time
	EndDate      time.Time
}

func (c Criteria) HasStart() bool { return !c.StartDate.IsZero() }
func (c Criteria) HasEnd() bool   { return !c.EndDate.IsZero() }

// RangeStart is the first instant included by the start date.
func (c Criteria) RangeStart() time.Time {
	return Day(c.StartDate)
}

// RangeEnd is the first instant excluded by the end date (the whole end day is included).
func (c Criteria) RangeEnd() time.Time {
	return Day(c.EndDate).AddDate(0, 0, 1)
}

// InRange applies the date predicates to a record timestamp.
func (c Criteria) InRange(ts time.Time) bool {
	if c.HasStart() && ts.Before(c.RangeStart()) {
		return false
	}
	if c.HasEnd() && !ts.Before(c.RangeEnd()) {
		return false
	}
	return true
}

// DateRange renders the range for report headers, e.g. "2024-01-01 to 2024-01-31".
func (c Criteria) DateRange() string {
	return formatDate(c.StartDate) + " to " + formatDate(c.EndDate)
}

// Record is the canonical attendance row flowing to the renderers.
type Record struct {
	Timestamp    time.Time `json:"datetime"`
	StudentID    string    `json:"student_id"`
	LastName     string    `json:"last"`
	FirstName    string    `json:"first"`
	SectionLabel string    `json:"year_section"`
	Status       string    `json:"status"`
}

func (r Record) IsPresent() bool {
	return strings.ToLower(r.Status) == "present"
}

// DateTime formats the timestamp, or returns "" when unknown.
func (r Record) DateTime() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.Format(DateTimeLayout)
}

// Values returns the record's fields in Columns order.
func (r Record) Values() []string {
	return []string{r.DateTime(), r.StudentID, r.LastName, r.FirstName, r.SectionLabel, r.Status}
}

type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// Lines are the summary lines shared by every renderer.
func (s Summary) Lines() []string {
	return []string{
		"Total records: " + strconv.Itoa(s.Total),
		"Present: " + strconv.Itoa(s.Present),
		"Absent: " + strconv.Itoa(s.Absent),
	}
}

func (s Summary) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Result is one report run. Renderers must not mutate it.
type Result struct {
	RunID    uuid.UUID `json:"run_id"`
	Criteria Criteria  `json:"-"`
	Records  []Record  `json:"records"`
	Summary  Summary   `json:"summary"`
}

func (res Result) IsEmpty() bool { return len(res.Records) == 0 }

// FilterOptions are the values offered by the report filter pickers.
type FilterOptions struct {
	AcademicYears []string `json:"academic_years"`
	Sections      []string `json:"sections"`
}

// Day truncates t to its calendar day, keeping the wall clock values in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Wall re-labels t's wall clock as UTC. Timestamps are stored as naive local wall time.
func Wall(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
