// Package ical turns structured course records into an iCalendar
// document. A Builder value is cheap and request-scoped; nothing is
// shared between generation calls.
package ical

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/syllacal/syllacal/internal/schedule"
)

const (
	prodID  = "-//syllacal//EN"
	calName = "syllacal"

	// DefaultTimezone is the civil timezone all local date-times are
	// interpreted in.
	DefaultTimezone = "America/New_York"

	// untilLayout is the UTC form RFC 5545 requires for the UNTIL
	// recurrence bound.
	untilLayout = "20060102T150405Z"

	// localLayout is the zone-relative form used with a TZID parameter.
	localLayout = "20060102T150405"
)

// Builder emits calendar documents. The zero value uses the default
// timezone, wall clock, and random UIDs; tests inject all three. The
// UID and generation timestamp are the only non-deterministic fields
// of the output.
type Builder struct {
	Location *time.Location
	Now      func() time.Time
	NewUID   func() string
}

func (b *Builder) location() *time.Location {
	if b.Location != nil {
		return b.Location
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (b *Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *Builder) uid() string {
	if b.NewUID != nil {
		return b.NewUID()
	}
	return uuid.New().String() + "@syllacal"
}

// Build assembles one calendar from course records, study tasks, and
// the client's filter selection. Any invalid record or filter rejects
// the whole request; a partially valid calendar is never emitted.
func (b *Builder) Build(courses []schedule.Course, tasks []schedule.StudyTask, filters schedule.FilterConfig) (*ics.Calendar, error) {
	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filters: %w", err)
	}
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	for _, s := range tasks {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	loc := b.location()
	stamp := b.now().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetXWRCalName(calName)
	cal.SetXWRTimezone(loc.String())

	if filters.IncludeLectures {
		for _, c := range courses {
			if !filters.IncludesCourse(c.ID) {
				continue
			}
			for _, mb := range c.MeetingBlocks {
				b.addLecture(cal, stamp, loc, c, mb)
			}
		}
	}

	if filters.IncludeAssignmentsAndExams {
		for _, c := range courses {
			if !filters.IncludesCourse(c.ID) {
				continue
			}
			for _, a := range c.Assessments {
				b.addAssessment(cal, stamp, loc, c, a)
			}
		}
	}

	if filters.IncludeStudySessions != schedule.StudySessionsNone {
		eligible := studyEligible(courses, filters)
		for _, s := range tasks {
			if !eligible[s.CourseID] {
				continue
			}
			b.addStudySession(cal, stamp, loc, s)
		}
	}

	return cal, nil
}

// addLecture emits one recurring weekly event for a meeting block.
// The anchor is zone-relative (TZID) so BYDAY and DST shifts resolve
// against the configured zone: an evening class must not land on the
// next UTC weekday, and occurrences keep the syllabus wall-clock time
// across transitions. Only the UNTIL bound is UTC, as RFC 5545
// requires when the anchor carries a zone.
func (b *Builder) addLecture(cal *ics.Calendar, stamp time.Time, loc *time.Location, c schedule.Course, mb schedule.MeetingBlock) {
	start := mb.StartDate.At(mb.StartLocal, loc)
	end := mb.StartDate.At(mb.EndLocal, loc)
	until := mb.EndDate.At(mb.EndLocal, loc).UTC()

	ev := cal.AddEvent(b.uid())
	ev.SetDtStampTime(stamp)
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{loc.String()}}
	ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(localLayout), tzid)
	ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(localLayout), tzid)
	ev.SetSummary(c.Name + " Lecture")
	if mb.Location != "" {
		ev.SetLocation(mb.Location)
	}
	ev.SetDescription(fmt.Sprintf("Course: %s (%s)", c.Name, c.ID))
	ev.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s;UNTIL=%s", byDay(mb.Days), until.Format(untilLayout)))
	addAlarm(ev, 15, "Class starting soon")
}

// addAssessment emits a one-hour block at the due time.
func (b *Builder) addAssessment(cal *ics.Calendar, stamp time.Time, loc *time.Location, c schedule.Course, a schedule.Assessment) {
	due := a.DueLocal.In(loc)

	ev := cal.AddEvent(b.uid())
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(due.UTC())
	ev.SetEndAt(due.Add(time.Hour).UTC())
	ev.SetSummary(fmt.Sprintf("%s - %s", a.Title, c.Name))
	if a.Location != "" {
		ev.SetLocation(a.Location)
	}

	desc := []string{
		fmt.Sprintf("Category: %s", a.Category),
		fmt.Sprintf("Course: %s (%s)", c.Name, c.ID),
	}
	if a.Notes != "" {
		desc = append(desc, fmt.Sprintf("Notes: %s", a.Notes))
	}
	ev.SetDescription(strings.Join(desc, "\n"))
	addAlarm(ev, 30, "Due soon")
}

// addStudySession emits a single event spanning the task's local
// start and end.
func (b *Builder) addStudySession(cal *ics.Calendar, stamp time.Time, loc *time.Location, s schedule.StudyTask) {
	ev := cal.AddEvent(b.uid())
	ev.SetDtStampTime(stamp)
	ev.SetStartAt(s.StartLocal.In(loc).UTC())
	ev.SetEndAt(s.EndLocal.In(loc).UTC())
	ev.SetSummary("Study - " + s.Title)

	desc := []string{fmt.Sprintf("Course: %s", s.CourseID)}
	if s.RelatedAssessment != "" {
		desc = append(desc, fmt.Sprintf("Related: %s", s.RelatedAssessment))
	}
	if s.Notes != "" {
		desc = append(desc, fmt.Sprintf("Notes: %s", s.Notes))
	}
	ev.SetDescription(strings.Join(desc, "\n"))
	addAlarm(ev, 10, "Study session starting")
}

// studyEligible resolves which course ids may contribute study
// sessions under the current filter mode.
func studyEligible(courses []schedule.Course, filters schedule.FilterConfig) map[string]bool {
	eligible := make(map[string]bool)
	if filters.IncludeStudySessions == schedule.StudySessionsSelected {
		for _, id := range filters.StudyCourses {
			if filters.IncludesCourse(id) {
				eligible[id] = true
			}
		}
		return eligible
	}
	for _, c := range courses {
		if filters.IncludesCourse(c.ID) {
			eligible[c.ID] = true
		}
	}
	return eligible
}

// byDay renders a day set as the RRULE BYDAY value.
func byDay(days []schedule.Weekday) string {
	codes := make([]string, 0, len(days))
	for _, d := range schedule.SortDays(days) {
		codes = append(codes, d.ICal())
	}
	return strings.Join(codes, ",")
}

// addAlarm attaches a DISPLAY reminder firing the given number of
// minutes before the event.
func addAlarm(ev *ics.VEvent, minutesBefore int, message string) {
	alarm := ev.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger(fmt.Sprintf("-PT%dM", minutesBefore))
	alarm.SetProperty(ics.ComponentPropertyDescription, message)
}
