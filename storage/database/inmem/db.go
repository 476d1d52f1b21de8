package inmemdb

import (
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core"
)

type (
	// Entry is one mirrored attendance record, named the way the fallback mirror has always named them.
	Entry struct {
		ID           uuid.UUID `json:"id" yaml:"id,omitempty"`
		YearSection  string    `json:"year_section" yaml:"year_section"`
		AcademicYear string    `json:"academic_year" yaml:"academic_year"`
		Semester     string    `json:"semester" yaml:"semester,omitempty"`
		DateTime     string    `json:"datetime" yaml:"datetime"`
		Status       string    `json:"status" yaml:"status"`
		StudentID    string    `json:"student_id" yaml:"student_id"`
		Last         string    `json:"last" yaml:"last"`
		First        string    `json:"first" yaml:"first"`
	}

	// ScheduleEntry tells which semesters a section runs in, for the schedule semester scope.
	ScheduleEntry struct {
		YearSection  string `json:"year_section" yaml:"year_section"`
		AcademicYear string `json:"academic_year" yaml:"academic_year"`
		Semester     string `json:"semester" yaml:"semester"`
	}

	Seed struct {
		AcademicYears []string        `yaml:"academic_years,omitempty"`
		Sections      []string        `yaml:"sections,omitempty"`
		Attendance    []Entry         `yaml:"attendance"`
		Schedules     []ScheduleEntry `yaml:"schedules,omitempty"`
	}

	// DB is the Fallback Store. It is not persisted; SaveSeed snapshots it.
	DB struct {
		mutex         sync.RWMutex
		semesterScope string
		years         []string
		sections      []string
		attendance    []Entry
		schedules     []ScheduleEntry
	}
)

var (
	defaultMu sync.Mutex
	defaultDB *DB
)

func Open(semesterScope string) *DB {
	if semesterScope == "" {
		semesterScope = core.SemesterScopeEvent
	}
	return &DB{semesterScope: semesterScope}
}

// Init replaces the process wide instance. Call it once at process start.
func Init(semesterScope string, seed Seed) {
	db := Open(semesterScope)
	db.Load(seed)

	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDB = db
}

// Default returns the process wide instance, empty if Init was never called.
func Default() *DB {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultDB == nil {
		defaultDB = Open("")
	}
	return defaultDB
}

// LoadSeed reads a YAML seed file. A missing path yields an empty seed.
func LoadSeed(path string) (Seed, error) {
	var seed Seed
	if path == "" {
		return seed, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return seed, nil
	}
	if err != nil {
		return seed, errors.Wrap(err, "reading fallback seed")
	}
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return seed, errors.Wrapf(err, "parsing fallback seed %s", path)
	}
	return seed, nil
}

func (db *DB) Load(seed Seed) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.years = append(db.years, seed.AcademicYears...)
	db.sections = append(db.sections, seed.Sections...)
	db.schedules = append(db.schedules, seed.Schedules...)
	db.appendEntries(seed.Attendance)
}

// Append mirrors check-ins taken while the Record Store is unreachable.
func (db *DB) Append(entries ...Entry) []Entry {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.appendEntries(entries)
}

func (db *DB) appendEntries(entries []Entry) []Entry {
	added := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		db.attendance = append(db.attendance, e)
		added = append(added, e)
	}
	return added
}

func (db *DB) entries() []Entry {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return append([]Entry(nil), db.attendance...)
}

// SaveSeed writes the current content as a seed file readable by LoadSeed.
func (db *DB) SaveSeed(path string) error {
	db.mutex.RLock()
	seed := Seed{
		AcademicYears: append([]string(nil), db.years...),
		Sections:      append([]string(nil), db.sections...),
		Attendance:    append([]Entry(nil), db.attendance...),
		Schedules:     append([]ScheduleEntry(nil), db.schedules...),
	}
	db.mutex.RUnlock()

	data, err := yaml.Marshal(seed)
	if err != nil {
		return errors.Wrap(err, "encoding fallback seed")
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing fallback seed")
	}
	return nil
}

// Years lists the known academic years, newest first.
func (db *DB) Years() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	seen := make(map[string]bool)
	years := make([]string, 0)
	add := func(y string) {
		if y != "" && !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, y := range db.years {
		add(y)
	}
	for _, e := range db.attendance {
		add(e.AcademicYear)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

func (db *DB) Sections() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	seen := make(map[string]bool)
	sections := make([]string, 0)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			sections = append(sections, s)
		}
	}
	for _, s := range db.sections {
		add(s)
	}
	for _, e := range db.attendance {
		add(e.YearSection)
	}
	sort.Strings(sections)
	return sections
}
