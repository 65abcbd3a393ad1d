// Package schedule holds the structured course model extracted from
// syllabus text, along with the token normalizer and text segmenter
// that produce it. Values are constructed once per extraction or per
// request and are not mutated afterwards.
package schedule

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Weekday is the canonical day-of-week form used everywhere in the
// pipeline. Both letter tokens ("M", "R") and the LLM's 0=Monday
// integer convention normalize into it.
type Weekday string

const (
	Monday    Weekday = "Mon"
	Tuesday   Weekday = "Tue"
	Wednesday Weekday = "Wed"
	Thursday  Weekday = "Thu"
	Friday    Weekday = "Fri"
	Saturday  Weekday = "Sat"
	Sunday    Weekday = "Sun"
)

// weekdayOrder is Monday-first, matching the LLM day-index contract.
var weekdayOrder = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// icalNames maps canonical weekdays to RFC 5545 BYDAY codes.
var icalNames = map[Weekday]string{
	Monday:    "MO",
	Tuesday:   "TU",
	Wednesday: "WE",
	Thursday:  "TH",
	Friday:    "FR",
	Saturday:  "SA",
	Sunday:    "SU",
}

// Valid reports whether d is one of the seven canonical weekdays.
func (d Weekday) Valid() bool {
	_, ok := icalNames[d]
	return ok
}

// ICal returns the RFC 5545 BYDAY code ("MO".."SU") for d.
// Returns an empty string for non-canonical values.
func (d Weekday) ICal() string {
	return icalNames[d]
}

// Index returns the Monday-based index (0..6) of d, or -1 if d is not
// canonical.
func (d Weekday) Index() int {
	for i, w := range weekdayOrder {
		if w == d {
			return i
		}
	}
	return -1
}

// Time returns the time.Weekday equivalent of d. Only valid for
// canonical weekdays.
func (d Weekday) Time() time.Weekday {
	// time.Weekday is Sunday-based.
	return time.Weekday((d.Index() + 1) % 7)
}

// WeekdayFromIndex maps a Monday-based index (0=Monday..6=Sunday) to a
// canonical weekday.
func WeekdayFromIndex(i int) (Weekday, bool) {
	if i < 0 || i >= len(weekdayOrder) {
		return "", false
	}
	return weekdayOrder[i], true
}

// SortDays deduplicates and orders days Monday-first. Non-canonical
// entries are dropped.
func SortDays(days []Weekday) []Weekday {
	seen := make(map[Weekday]bool, len(days))
	for _, d := range days {
		if d.Valid() {
			seen[d] = true
		}
	}
	out := make([]Weekday, 0, len(seen))
	for _, d := range weekdayOrder {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// LocalTime is a wall-clock time with no date or zone attached.
type LocalTime struct {
	Hour   int
	Minute int
	Second int
}

// String renders t as "HH:MM". Seconds are carried internally for
// HHMMSS inputs but do not appear in the canonical form.
func (t LocalTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// seconds returns the offset from midnight, used for ordering.
func (t LocalTime) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Before reports whether t is strictly earlier in the day than o.
func (t LocalTime) Before(o LocalTime) bool {
	return t.seconds() < o.seconds()
}

// MarshalText renders the canonical "HH:MM" form.
func (t LocalTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses any form NormalizeTime accepts.
func (t *LocalTime) UnmarshalText(b []byte) error {
	parsed, err := NormalizeTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a civil calendar date with no time or zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String renders d as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// After reports whether d falls after o.
func (d Date) After(o Date) bool {
	if d.Year != o.Year {
		return d.Year > o.Year
	}
	if d.Month != o.Month {
		return d.Month > o.Month
	}
	return d.Day > o.Day
}

// At combines the date with a wall-clock time in the given location.
func (d Date) At(t LocalTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, 0, loc)
}

// MarshalText renders the ISO form.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses the ISO "YYYY-MM-DD" form.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse("2006-01-02", string(b))
	if err != nil {
		return fmt.Errorf("date %q: %w", b, ErrUnparseableDate)
	}
	d.Year, d.Month, d.Day = t.Year(), t.Month(), t.Day()
	return nil
}

// DateTime is a local date-time ("YYYY-MM-DDTHH:MM") with no zone.
type DateTime struct {
	Date Date
	Time LocalTime
}

// String renders dt in the wire form "YYYY-MM-DDTHH:MM".
func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// In resolves dt in the given civil timezone.
func (dt DateTime) In(loc *time.Location) time.Time {
	return dt.Date.At(dt.Time, loc)
}

// Before reports whether dt is strictly earlier than o.
func (dt DateTime) Before(o DateTime) bool {
	return dt.In(time.UTC).Before(o.In(time.UTC))
}

// MarshalText renders the wire form.
func (dt DateTime) MarshalText() ([]byte, error) {
	return []byte(dt.String()), nil
}

// UnmarshalText parses "YYYY-MM-DDTHH:MM" with optional seconds.
func (dt *DateTime) UnmarshalText(b []byte) error {
	s := string(b)
	var t time.Time
	var err error
	if t, err = time.Parse("2006-01-02T15:04:05", s); err != nil {
		if t, err = time.Parse("2006-01-02T15:04", s); err != nil {
			return fmt.Errorf("date-time %q: %w", s, ErrUnparseableDate)
		}
	}
	dt.Date = Date{t.Year(), t.Month(), t.Day()}
	dt.Time = LocalTime{t.Hour(), t.Minute(), t.Second()}
	return nil
}

// MeetingBlock is one recurring weekly time span for a course.
type MeetingBlock struct {
	Days       []Weekday `json:"days" yaml:"days"`
	StartLocal LocalTime `json:"start_local" yaml:"start_local"`
	EndLocal   LocalTime `json:"end_local" yaml:"end_local"`
	StartDate  Date      `json:"start_date" yaml:"start_date"`
	EndDate    Date      `json:"end_date" yaml:"end_date"`
	Location   string    `json:"location,omitempty" yaml:"location,omitempty"`
	Kind       string    `json:"type" yaml:"type"`
}

// Validate checks the meeting block invariants: non-empty canonical
// day set, end after start, date range ordered.
func (mb MeetingBlock) Validate() error {
	if len(mb.Days) == 0 {
		return fmt.Errorf("meeting block has no days")
	}
	for _, d := range mb.Days {
		if !d.Valid() {
			return fmt.Errorf("meeting block has unrecognized day %q", d)
		}
	}
	if !mb.StartLocal.Before(mb.EndLocal) {
		return fmt.Errorf("meeting block end %s is not after start %s", mb.EndLocal, mb.StartLocal)
	}
	if mb.StartDate.After(mb.EndDate) {
		return fmt.Errorf("meeting block end date %s precedes start date %s", mb.EndDate, mb.StartDate)
	}
	return nil
}

// Category classifies an assessment deadline.
type Category string

const (
	CategoryAssignment Category = "assignment"
	CategoryExam       Category = "exam"
	CategoryProject    Category = "project"
	CategoryQuiz       Category = "quiz"
	CategoryMilestone  Category = "milestone"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAssignment, CategoryExam, CategoryProject, CategoryQuiz, CategoryMilestone:
		return true
	}
	return false
}

// Assessment is a single-occurrence deadline tied to a course.
type Assessment struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string   `json:"title" yaml:"title"`
	DueLocal DateTime `json:"due_datetime_local" yaml:"due_datetime_local"`
	Category Category `json:"category" yaml:"category"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	Notes    string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate checks the assessment invariants.
func (a Assessment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("assessment has empty title")
	}
	if !a.Category.Valid() {
		return fmt.Errorf("assessment %q has unknown category %q", a.Title, a.Category)
	}
	return nil
}

// Course is one extracted syllabus: identity plus ordered meeting
// blocks and assessments.
type Course struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	MeetingBlocks []MeetingBlock `json:"meeting_blocks" yaml:"meeting_blocks"`
	Assessments   []Assessment   `json:"assessments" yaml:"assessments"`
}

// Validate checks the course and everything it owns.
func (c Course) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("course has empty id")
	}
	if c.Name == "" {
		return fmt.Errorf("course %s has empty name", c.ID)
	}
	for i, mb := range c.MeetingBlocks {
		if err := mb.Validate(); err != nil {
			return fmt.Errorf("course %s meeting block %d: %w", c.ID, i, err)
		}
	}
	for i, a := range c.Assessments {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("course %s assessment %d: %w", c.ID, i, err)
		}
	}
	return nil
}

// StudyTask is a planned study session referencing a course by id.
// The reference is weak: lookup only, no ownership.
type StudyTask struct {
	ID                string   `json:"id,omitempty" yaml:"id,omitempty"`
	CourseID          string   `json:"course_id" yaml:"course_id"`
	Title             string   `json:"title" yaml:"title"`
	StartLocal        DateTime `json:"start_local" yaml:"start_local"`
	EndLocal          DateTime `json:"end_local" yaml:"end_local"`
	RelatedAssessment string   `json:"related_assessment,omitempty" yaml:"related_assessment,omitempty"`
	Notes             string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Validate checks the study task invariants.
func (s StudyTask) Validate() error {
	if s.CourseID == "" {
		return fmt.Errorf("study task %q has empty course_id", s.Title)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("study task has empty title")
	}
	if !s.StartLocal.Before(s.EndLocal) {
		return fmt.Errorf("study task %q end is not after start", s.Title)
	}
	return nil
}

// StudySessionMode selects which study sessions are emitted.
type StudySessionMode string

const (
	StudySessionsNone     StudySessionMode = "none"
	StudySessionsAll      StudySessionMode = "all"
	StudySessionsSelected StudySessionMode = "selectedCourses"
)

// Valid reports whether m is a known mode.
func (m StudySessionMode) Valid() bool {
	switch m {
	case StudySessionsNone, StudySessionsAll, StudySessionsSelected:
		return true
	}
	return false
}

// FilterConfig is the client-selected inclusion rule set for one
// calendar generation call.
type FilterConfig struct {
	IncludeLectures            bool             `json:"includeLectures" yaml:"includeLectures"`
	IncludeAssignmentsAndExams bool             `json:"includeAssignmentsAndExams" yaml:"includeAssignmentsAndExams"`
	IncludeStudySessions       StudySessionMode `json:"includeStudySessions" yaml:"includeStudySessions"`
	StudyCourses               []string         `json:"studyCourses" yaml:"studyCourses"`
	CourseInclusion            map[string]bool  `json:"courseInclusion" yaml:"courseInclusion"`
}

// Validate checks the filter configuration.
func (f FilterConfig) Validate() error {
	if !f.IncludeStudySessions.Valid() {
		return fmt.Errorf("unknown study session mode %q", f.IncludeStudySessions)
	}
	return nil
}

// IncludesCourse reports whether the course id is included. Courses
// absent from the inclusion map default to included.
func (f FilterConfig) IncludesCourse(id string) bool {
	on, ok := f.CourseInclusion[id]
	return !ok || on
}

// nonAlnumRun collapses to a single separator in course ids.
var nonAlnumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// maxCourseIDLen bounds derived course ids so they stay usable as
// filenames and map keys.
const maxCourseIDLen = 24

// CourseID derives a stable, identifier-safe slug from a course name.
// The same name always yields the same id; fallback (typically the
// source filename) is used when the name reduces to nothing.
func CourseID(name, fallback string) string {
	id := nonAlnumRun.ReplaceAllString(name, "-")
	id = strings.Trim(id, "-")
	if len(id) > maxCourseIDLen {
		id = id[:maxCourseIDLen]
		id = strings.Trim(id, "-")
	}
	if id == "" {
		return fallback
	}
	return id
}
