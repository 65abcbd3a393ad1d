package schedule

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.September, 1, 12, 0, 0, 0, time.UTC)
	}
}

const sampleSyllabus = `
CS 4000 Systems Programming
Course: Intro to Systems
Instructor: A. Professor

MWF 1:30 PM - 2:20 PM in ENG 201

Homework 3 due Mar 15 at 5:00 PM
Final Exam due 12/15
`

func TestExtract(t *testing.T) {
	ex := &Extractor{Now: fixedClock(2025)}
	course, err := ex.Extract("syllabus.pdf", sampleSyllabus)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if course.Name != "Intro to Systems" {
		t.Errorf("Name = %q, want %q", course.Name, "Intro to Systems")
	}
	if course.ID != "Intro-to-Systems" {
		t.Errorf("ID = %q, want %q", course.ID, "Intro-to-Systems")
	}

	if len(course.MeetingBlocks) != 1 {
		t.Fatalf("got %d meeting blocks, want 1", len(course.MeetingBlocks))
	}
	mb := course.MeetingBlocks[0]
	wantDays := []Weekday{Monday, Wednesday, Friday}
	if !slices.Equal(mb.Days, wantDays) {
		t.Errorf("Days = %v, want %v", mb.Days, wantDays)
	}
	if got := mb.StartLocal.String(); got != "13:30" {
		t.Errorf("StartLocal = %q, want %q", got, "13:30")
	}
	if got := mb.EndLocal.String(); got != "14:20" {
		t.Errorf("EndLocal = %q, want %q", got, "14:20")
	}
	if got := mb.StartDate.String(); got != "2025-01-06" {
		t.Errorf("StartDate = %q, want %q", got, "2025-01-06")
	}
	if got := mb.EndDate.String(); got != "2025-04-25" {
		t.Errorf("EndDate = %q, want %q", got, "2025-04-25")
	}
	if mb.Kind != "lecture" {
		t.Errorf("Kind = %q, want %q", mb.Kind, "lecture")
	}
	if err := mb.Validate(); err != nil {
		t.Errorf("meeting block invalid: %v", err)
	}

	if len(course.Assessments) != 2 {
		t.Fatalf("got %d assessments, want 2", len(course.Assessments))
	}

	hw := course.Assessments[0]
	if hw.Title != "Homework 3 due at 5:00 PM" {
		t.Errorf("Title = %q", hw.Title)
	}
	if got := hw.DueLocal.String(); got != "2025-03-15T17:00" {
		t.Errorf("DueLocal = %q, want %q", got, "2025-03-15T17:00")
	}

	final := course.Assessments[1]
	if final.Title != "Final Exam due" {
		t.Errorf("Title = %q, want %q", final.Title, "Final Exam due")
	}
	if got := final.DueLocal.String(); got != "2025-12-15T23:59" {
		t.Errorf("DueLocal = %q, want %q", got, "2025-12-15T23:59")
	}
	if final.Category != CategoryAssignment {
		t.Errorf("Category = %q, want %q", final.Category, CategoryAssignment)
	}
}

func TestExtractDefaultsDueTimeToEndOfDay(t *testing.T) {
	ex := &Extractor{Now: fixedClock(2025)}
	course, err := ex.Extract("s.pdf", "Quiz 1 due 2/14")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(course.Assessments) != 1 {
		t.Fatalf("got %d assessments, want 1", len(course.Assessments))
	}
	if got := course.Assessments[0].DueLocal.Time; got != (LocalTime{Hour: 23, Minute: 59}) {
		t.Errorf("due time = %v, want 23:59", got)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	ex := &Extractor{Now: fixedClock(2025)}
	for _, raw := range []string{"", "   \n\t\n  "} {
		if _, err := ex.Extract("s.pdf", raw); !errors.Is(err, ErrEmptyDocumentText) {
			t.Errorf("Extract(%q) err = %v, want ErrEmptyDocumentText", raw, err)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	ex := &Extractor{Now: fixedClock(2025)}
	a, err := ex.Extract("syllabus.pdf", sampleSyllabus)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ex.Extract("syllabus.pdf", sampleSyllabus)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID {
		t.Errorf("course id not stable: %q vs %q", a.ID, b.ID)
	}
	if len(a.MeetingBlocks) != len(b.MeetingBlocks) || len(a.Assessments) != len(b.Assessments) {
		t.Error("repeated extraction produced different record shapes")
	}
}

func TestExtractSemesterOverride(t *testing.T) {
	ex := &Extractor{
		Now:           fixedClock(2025),
		SemesterStart: Date{Year: 2025, Month: time.August, Day: 25},
		SemesterEnd:   Date{Year: 2025, Month: time.December, Day: 12},
	}
	course, err := ex.Extract("s.pdf", "Course: Algorithms\nTR 10:00 - 11:15")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(course.MeetingBlocks) != 1 {
		t.Fatalf("got %d meeting blocks, want 1", len(course.MeetingBlocks))
	}
	mb := course.MeetingBlocks[0]
	if mb.StartDate.String() != "2025-08-25" || mb.EndDate.String() != "2025-12-12" {
		t.Errorf("semester range = %s..%s", mb.StartDate, mb.EndDate)
	}
	if !slices.Equal(mb.Days, []Weekday{Tuesday, Thursday}) {
		t.Errorf("Days = %v, want [Tue Thu]", mb.Days)
	}
}

func TestExtractSkipsUnparseableLines(t *testing.T) {
	raw := "Course: Databases\nMWF 3:00 PM - 2:00 PM\nProject due someday"
	ex := &Extractor{Now: fixedClock(2025)}
	course, err := ex.Extract("s.pdf", raw)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(course.MeetingBlocks) != 0 {
		t.Errorf("unexpected meeting blocks: %+v", course.MeetingBlocks)
	}
	if len(course.Assessments) != 0 {
		t.Errorf("unexpected assessments: %+v", course.Assessments)
	}
}

func TestCourseID(t *testing.T) {
	tests := []struct {
		name     string
		fallback string
		want     string
	}{
		{"Intro to Systems", "f.pdf", "Intro-to-Systems"},
		{"CS 101: Data Structures & Algorithms", "f.pdf", "CS-101-Data-Structures-A"},
		{"!!!", "syllabus.pdf", "syllabus.pdf"},
		{"abc", "", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CourseID(tt.name, tt.fallback); got != tt.want {
				t.Errorf("CourseID(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}
