package ical

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/syllacal/syllacal/internal/schedule"
)

// Occurrence is one concrete event instance inside a preview window.
type Occurrence struct {
	CourseID string    `json:"course_id" yaml:"course_id"`
	Summary  string    `json:"summary" yaml:"summary"`
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end" yaml:"end"`
	Location string    `json:"location,omitempty" yaml:"location,omitempty"`
}

// Expand materializes the recurring meetings of the given courses
// into concrete occurrences between from and to inclusive, for
// client-side calendar previews. Assessments inside the window are
// included as single occurrences.
func (b *Builder) Expand(courses []schedule.Course, from, to schedule.Date) ([]Occurrence, error) {
	if from.After(to) {
		return nil, fmt.Errorf("preview window end %s precedes start %s", to, from)
	}
	loc := b.location()
	windowStart := from.At(schedule.LocalTime{}, loc)
	windowEnd := to.At(schedule.LocalTime{Hour: 23, Minute: 59, Second: 59}, loc)

	var out []Occurrence
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		for _, mb := range c.MeetingBlocks {
			occ, err := expandBlock(c, mb, loc, windowStart, windowEnd)
			if err != nil {
				return nil, err
			}
			out = append(out, occ...)
		}
		for _, a := range c.Assessments {
			due := a.DueLocal.In(loc)
			if due.Before(windowStart) || due.After(windowEnd) {
				continue
			}
			out = append(out, Occurrence{
				CourseID: c.ID,
				Summary:  a.Title,
				Start:    due,
				End:      due.Add(time.Hour),
				Location: a.Location,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func expandBlock(c schedule.Course, mb schedule.MeetingBlock, loc *time.Location, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: toRRuleDays(mb.Days),
		Dtstart:   mb.StartDate.At(mb.StartLocal, loc),
		Until:     mb.EndDate.At(mb.EndLocal, loc),
	})
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", c.ID, err)
	}

	duration := mb.EndDate.At(mb.EndLocal, loc).Sub(mb.EndDate.At(mb.StartLocal, loc))
	var out []Occurrence
	for _, start := range r.Between(windowStart, windowEnd, true) {
		out = append(out, Occurrence{
			CourseID: c.ID,
			Summary:  c.Name + " Lecture",
			Start:    start,
			End:      start.Add(duration),
			Location: mb.Location,
		})
	}
	return out, nil
}
