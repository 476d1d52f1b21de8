package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	warnings []string
}

func (l *testLogger) Debug(string, ...interface{}) {}
func (l *testLogger) Info(string, ...interface{}) {}
func (l *testLogger) Warn(msg string, _ ...interface{}) { l.warnings = append(l.warnings, msg) }
func (l *testLogger) Error(string, ...interface{}) {}
func (l *testLogger) Fatal(string, ...interface{}) {}

type stubSource struct {
	rows    []Row
	opts    FilterOptions
	err     error
	calls   int
	lastArg Criteria
}

func (s *stubSource) Fetch(_ context.Context, c Criteria) ([]Row, error) {
	s.calls++
	s.lastArg = c
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubSource) FilterOptions(context.Context) (FilterOptions, error) {
	if s.err != nil {
		return FilterOptions{}, s.err
	}
	return s.opts, nil
}

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     Summary
	}{
		{name: "empty", want: Summary{}},
		{name: "case insensitive present", statuses: []string{"Present", "PRESENT", "present"}, want: Summary{Total: 3, Present: 3}},
		{name: "anything else is absent", statuses: []string{"Absent", "", "late", "present ", "Present"}, want: Summary{Total: 5, Present: 1, Absent: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]Record, 0, len(tt.statuses))
			for _, st := range tt.statuses {
				records = append(records, Record{Status: st})
			}
			got := Summarize(records)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(records), got.Total)
			assert.Equal(t, got.Total, got.Present+got.Absent)
		})
	}
}

func TestSummary_Lines(t *testing.T) {
	s := Summary{Total: 3, Present: 2, Absent: 1}
	assert.Equal(t, []string{"Total records: 3", "Present: 2", "Absent: 1"}, s.Lines())
	assert.Equal(t, "Total records: 3\nPresent: 2\nAbsent: 1", s.String())
}

func TestNormalize(t *testing.T) {
	ts := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)
	want := Record{
		Timestamp:    ts,
		StudentID:    "2020-0001",
		LastName:     "Dela Cruz",
		FirstName:    "Juan",
		SectionLabel: "BSIT 4A",
		Status:       "Present",
	}

	tests := []struct {
		name    string
		row     Row
		want    Record
		wantErr bool
	}{
		{
			name: "record store row",
			row: Row{
				"recorded_at": ts, "student_id": "2020-0001", "last_name": []byte("Dela Cruz"),
				"first_name": "Juan", "year_section": "BSIT 4A", "status": "Present",
			},
			want: want,
		},
		{
			name: "fallback store row",
			row: Row{
				"datetime": "2024-01-15 08:30:00", "student_id": "2020-0001", "last": "Dela Cruz",
				"first": "Juan", "year_section": "BSIT 4A", "status": "Present",
				"academic_year": "2023-2024", "semester": "1st Semester",
			},
			want: want,
		},
		{
			name: "sqlite text timestamp",
			row:  Row{"recorded_at": "2024-01-15 08:30:00+00:00", "student_id": "2020-0001", "last_name": "Dela Cruz", "first_name": "Juan", "year_section": "BSIT 4A", "status": "Present"},
			want: want,
		},
		{name: "missing fields default to empty", row: Row{}, want: Record{}},
		{name: "nil values default to empty", row: Row{"status": nil, "last": nil}, want: Record{}},
		{name: "malformed timestamp", row: Row{"datetime": "yesterday"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.row)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_Values(t *testing.T) {
	r := Record{Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), StudentID: "1", LastName: "L", FirstName: "F", SectionLabel: "S", Status: "Absent"}
	assert.Equal(t, []string{"2024-01-02 03:04:05", "1", "L", "F", "S", "Absent"}, r.Values())
	assert.Equal(t, "", Record{}.DateTime())
	assert.Len(t, ColumnTitles(), len(r.Values()))
}

func TestCriteria_InRange(t *testing.T) {
	c := Criteria{StartDate: date("2024-01-01"), EndDate: date("2024-01-31")}
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{name: "before start", ts: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), want: false},
		{name: "start of range", ts: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), want: true},
		{name: "end day is inclusive", ts: time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), want: true},
		{name: "after end", ts: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.InRange(tt.ts))
		})
	}

	assert.True(t, Criteria{}.InRange(time.Time{}))
	inverted := Criteria{StartDate: date("2024-02-01"), EndDate: date("2024-01-01")}
	assert.False(t, inverted.InRange(date("2024-01-15")))
	assert.Equal(t, "2024-01-01 to 2024-01-31", c.DateRange())
	assert.Equal(t, " to ", Criteria{}.DateRange())
}

func TestQueryFilter_Criteria(t *testing.T) {
	tests := []struct {
		name      string
		qf        QueryFilter
		strict    bool
		want      Criteria
		wantValid bool // want a validation error
	}{
		{name: "empty", qf: QueryFilter{}, want: Criteria{}},
		{
			name: "all fields",
			qf:   QueryFilter{Section: " BSIT 4A ", AcademicYear: "2023-2024", Semester: "1st Semester", StartDate: "2024-01-01", EndDate: "2024-01-31"},
			want: Criteria{Section: "BSIT 4A", AcademicYear: "2023-2024", Semester: "1st Semester", StartDate: date("2024-01-01"), EndDate: date("2024-01-31")},
		},
		{name: "unknown year is not an error", qf: QueryFilter{AcademicYear: "someday"}, want: Criteria{AcademicYear: "someday"}},
		{name: "bad date", qf: QueryFilter{StartDate: "01/01/2024"}, wantValid: true},
		{
			name: "inverted range is permissive by default",
			qf:   QueryFilter{StartDate: "2024-02-01", EndDate: "2024-01-01"},
			want: Criteria{StartDate: date("2024-02-01"), EndDate: date("2024-01-01")},
		},
		{name: "inverted range rejected when strict", qf: QueryFilter{StartDate: "2024-02-01", EndDate: "2024-01-01"}, strict: true, wantValid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.qf.Criteria(tt.strict)
			if tt.wantValid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func fixtureRows() []Row {
	return []Row{
		{"recorded_at": time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC), "student_id": "1", "last_name": "A", "first_name": "B", "year_section": "BSIT 4A", "status": "Present"},
		{"recorded_at": time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), "student_id": "2", "last_name": "C", "first_name": "D", "year_section": "BSIT 4A", "status": "Absent"},
	}
}

func TestEngine_Query(t *testing.T) {
	ctx := context.Background()
	criteria := Criteria{Section: "BSIT 4A"}

	t.Run("primary", func(t *testing.T) {
		primary := &stubSource{rows: fixtureRows()}
		fallback := &stubSource{}
		logger := &testLogger{}
		e := NewEngine(primary, fallback, logger)

		got, err := e.Query(ctx, criteria)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "1", got[0].StudentID)
		assert.Equal(t, criteria, primary.lastArg)
		assert.Zero(t, fallback.calls)
		assert.Empty(t, logger.warnings)

		again, err := e.Query(ctx, criteria)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	})

	t.Run("falls back silently", func(t *testing.T) {
		primary := &stubSource{err: errors.New("dial tcp: connection refused")}
		fallback := &stubSource{rows: []Row{{"datetime": "2024-01-20 09:00:00", "student_id": "9", "last": "X", "first": "Y", "year_section": "BSIT 4A", "status": "present"}}}
		logger := &testLogger{}
		e := NewEngine(primary, fallback, logger)

		got, err := e.Query(ctx, criteria)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "9", got[0].StudentID)
		assert.Equal(t, criteria, fallback.lastArg)
		assert.Len(t, logger.warnings, 1)
	})

	t.Run("malformed primary rows fall back", func(t *testing.T) {
		primary := &stubSource{rows: []Row{{"recorded_at": 42}}}
		fallback := &stubSource{rows: fixtureRows()}
		got, err := NewEngine(primary, fallback, &testLogger{}).Query(ctx, criteria)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("fallback failure propagates", func(t *testing.T) {
		primary := &stubSource{err: errors.New("down")}
		fallback := &stubSource{rows: []Row{{"datetime": "not a date"}}}
		_, err := NewEngine(primary, fallback, &testLogger{}).Query(ctx, criteria)
		assert.Error(t, err)
	})

	t.Run("no fallback", func(t *testing.T) {
		primary := &stubSource{err: errors.New("down")}
		_, err := NewEngine(primary, nil, &testLogger{}).Query(ctx, criteria)
		assert.Error(t, err)
	})
}

func TestEngine_Run(t *testing.T) {
	primary := &stubSource{rows: fixtureRows()}
	e := NewEngine(primary, &stubSource{}, &testLogger{})

	res, err := e.Run(context.Background(), Criteria{Section: "BSIT 4A"})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Present: 1, Absent: 1}, res.Summary)
	assert.Equal(t, "BSIT 4A", res.Criteria.Section)
	assert.False(t, res.IsEmpty())
	assert.NotEqual(t, [16]byte{}, [16]byte(res.RunID))
}

func TestEngine_FilterOptions(t *testing.T) {
	ctx := context.Background()
	primaryOpts := FilterOptions{AcademicYears: []string{"2024-2025"}, Sections: []string{"BSIT 4A"}}
	fallbackOpts := FilterOptions{AcademicYears: []string{"2023-2024"}, Sections: []string{"BSCS 1B"}}

	got, err := NewEngine(&stubSource{opts: primaryOpts}, &stubSource{opts: fallbackOpts}, &testLogger{}).FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, primaryOpts, got)

	got, err = NewEngine(&stubSource{err: errors.New("down")}, &stubSource{opts: fallbackOpts}, &testLogger{}).FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, fallbackOpts, got)
}
