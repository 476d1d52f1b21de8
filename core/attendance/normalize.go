package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Row is a source row keyed by field name. The Record Store and the Fallback Store name their fields differently.
type Row map[string]interface{}

// fieldAliases maps every canonical field to the names used by the stores, in lookup order.
var fieldAliases = struct {
	timestamp, studentID, last, first, section, status []string
}{
	timestamp: []string{"recorded_at", "datetime", "timestamp"},
	studentID: []string{"student_id"},
	last:      []string{"last_name", "last"},
	first:     []string{"first_name", "first"},
	section:   []string{"section_name", "year_section", "section_label"},
	status:    []string{"status"},
}

var timestampLayouts = []string{
	DateTimeLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	DateLayout,
}

// Normalize maps a row of either store onto a Record. Missing fields become "".
func Normalize(row Row) (Record, error) {
	ts, err := ParseTimestamp(row.lookup(fieldAliases.timestamp))
	if err != nil {
		return Record{}, err
	}
	return Record{
		Timestamp:    ts,
		StudentID:    row.text(fieldAliases.studentID),
		LastName:     row.text(fieldAliases.last),
		FirstName:    row.text(fieldAliases.first),
		SectionLabel: row.text(fieldAliases.section),
		Status:       row.text(fieldAliases.status),
	}, nil
}

// NormalizeAll keeps the source order.
func NormalizeAll(rows []Row) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec, err := Normalize(row)
		if err != nil {
			return nil, errors.Wrapf(err, "normalizing row %d", i)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseTimestamp accepts time values, driver byte slices and the textual layouts both stores produce.
func ParseTimestamp(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return Wall(val), nil
	case *time.Time:
		if val == nil {
			return time.Time{}, nil
		}
		return Wall(*val), nil
	case []byte:
		return ParseTimestamp(string(val))
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Wall(t), nil
			}
		}
		return time.Time{}, errors.Errorf("malformed timestamp %q", s)
	default:
		return time.Time{}, errors.Errorf("unsupported timestamp type %T", v)
	}
}

func (row Row) lookup(names []string) interface{} {
	for _, name := range names {
		if v, ok := row[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (row Row) text(names []string) string {
	switch val := row.lookup(names).(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
