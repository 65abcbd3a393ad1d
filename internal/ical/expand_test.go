package ical

import (
	"testing"
	"time"

	"github.com/syllacal/syllacal/internal/schedule"
)

func TestExpandWindow(t *testing.T) {
	b := testBuilder(t)
	c := schedule.Course{
		ID:   "Systems",
		Name: "Systems",
		MeetingBlocks: []schedule.MeetingBlock{{
			Days:       []schedule.Weekday{schedule.Monday, schedule.Wednesday},
			StartLocal: schedule.LocalTime{Hour: 10, Minute: 0},
			EndLocal:   schedule.LocalTime{Hour: 11, Minute: 0},
			StartDate:  schedule.Date{Year: 2025, Month: time.January, Day: 6},
			EndDate:    schedule.Date{Year: 2025, Month: time.January, Day: 31},
			Kind:       "lecture",
		}},
		Assessments: []schedule.Assessment{
			{
				Title:    "Quiz 1",
				DueLocal: mustDateTime("2025-01-10T17:00"),
				Category: schedule.CategoryQuiz,
			},
			{
				Title:    "Quiz 2",
				DueLocal: mustDateTime("2025-01-24T17:00"),
				Category: schedule.CategoryQuiz,
			},
		},
	}

	// Jan 6 and 13 are Mondays, Jan 8 is a Wednesday. The window closes
	// Jan 14, so Jan 15 onward and Quiz 2 fall outside it.
	occ, err := b.Expand([]schedule.Course{c},
		schedule.Date{Year: 2025, Month: time.January, Day: 6},
		schedule.Date{Year: 2025, Month: time.January, Day: 14})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	if len(occ) != 4 {
		t.Fatalf("got %d occurrences, want 4: %+v", len(occ), occ)
	}
	wantStarts := []string{
		"2025-01-06 10:00",
		"2025-01-08 10:00",
		"2025-01-10 17:00",
		"2025-01-13 10:00",
	}
	for i, want := range wantStarts {
		got := occ[i].Start.Format("2006-01-02 15:04")
		if got != want {
			t.Errorf("occurrence %d starts %s, want %s", i, got, want)
		}
	}
	if occ[0].End.Sub(occ[0].Start) != time.Hour {
		t.Errorf("lecture duration = %v, want 1h", occ[0].End.Sub(occ[0].Start))
	}
	if occ[2].Summary != "Quiz 1" {
		t.Errorf("occurrence 2 summary = %q, want Quiz 1", occ[2].Summary)
	}
}

func TestExpandEmptyWindow(t *testing.T) {
	b := testBuilder(t)
	occ, err := b.Expand(nil,
		schedule.Date{Year: 2025, Month: time.March, Day: 1},
		schedule.Date{Year: 2025, Month: time.March, Day: 7})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(occ) != 0 {
		t.Errorf("got %d occurrences, want 0", len(occ))
	}
}

func TestExpandRejectsInvertedWindow(t *testing.T) {
	b := testBuilder(t)
	_, err := b.Expand(nil,
		schedule.Date{Year: 2025, Month: time.March, Day: 7},
		schedule.Date{Year: 2025, Month: time.March, Day: 1})
	if err == nil {
		t.Error("expected error for inverted window")
	}
}
