package ical

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/syllacal/syllacal/internal/schedule"
)

// WeeklyEvent is the input to the legacy generator: a single weekly
// meeting terminated by occurrence count rather than an end date.
type WeeklyEvent struct {
	Name     string
	Days     []schedule.Weekday
	Start    schedule.LocalTime
	End      schedule.LocalTime
	Location string
	Weeks    int
}

// rruleDays maps canonical weekdays to rrule-go weekday values.
var rruleDays = map[schedule.Weekday]rrule.Weekday{
	schedule.Monday:    rrule.MO,
	schedule.Tuesday:   rrule.TU,
	schedule.Wednesday: rrule.WE,
	schedule.Thursday:  rrule.TH,
	schedule.Friday:    rrule.FR,
	schedule.Saturday:  rrule.SA,
	schedule.Sunday:    rrule.SU,
}

func toRRuleDays(days []schedule.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range schedule.SortDays(days) {
		out = append(out, rruleDays[d])
	}
	return out
}

// LegacyWeekly renders a self-contained calendar for one weekly
// meeting, using a COUNT-terminated recurrence anchored at the next
// occurrence of the meeting's days on or after today. This is the
// deprecated alternative to Build's UNTIL bound; the two are not
// equivalent when the term contains holidays, so they are kept
// separate rather than merged.
//
// The document embeds a fixed America/New_York VTIMEZONE (standard
// time from the first Sunday of November, daylight time from the
// second Sunday of March) so the TZID references resolve without any
// external zone database.
func (b *Builder) LegacyWeekly(ev WeeklyEvent) (string, error) {
	days := schedule.SortDays(ev.Days)
	if len(days) == 0 {
		return "", fmt.Errorf("weekly event %q has no days", ev.Name)
	}
	if ev.Weeks < 1 {
		return "", fmt.Errorf("weekly event %q has no occurrences", ev.Name)
	}
	if !ev.Start.Before(ev.End) {
		return "", fmt.Errorf("weekly event %q end is not after start", ev.Name)
	}

	loc := b.location()
	now := b.now().In(loc)
	today := schedule.Date{Year: now.Year(), Month: now.Month(), Day: now.Day()}

	// First occurrence: the earliest of the meeting days on or after
	// today, carrying the meeting start time.
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: toRRuleDays(days),
		Dtstart:   today.At(ev.Start, loc),
		Count:     ev.Weeks,
	})
	if err != nil {
		return "", fmt.Errorf("weekly event %q: %w", ev.Name, err)
	}
	occurrences := r.All()
	if len(occurrences) == 0 {
		return "", fmt.Errorf("weekly event %q has no occurrences", ev.Name)
	}
	first := occurrences[0]
	firstDate := schedule.Date{Year: first.Year(), Month: first.Month(), Day: first.Day()}

	const stampLayout = "20060102T150405"
	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")
	line("X-WR-CALNAME:" + ev.Name)
	line("BEGIN:VTIMEZONE")
	line("TZID:" + DefaultTimezone)
	line("BEGIN:STANDARD")
	line("DTSTART:19701101T020000")
	line("TZOFFSETFROM:-0400")
	line("TZOFFSETTO:-0500")
	line("TZNAME:EST")
	line("RRULE:FREQ=YEARLY;BYDAY=1SU;BYMONTH=11")
	line("END:STANDARD")
	line("BEGIN:DAYLIGHT")
	line("DTSTART:19700308T020000")
	line("TZOFFSETFROM:-0500")
	line("TZOFFSETTO:-0400")
	line("TZNAME:EDT")
	line("RRULE:FREQ=YEARLY;BYDAY=2SU;BYMONTH=3")
	line("END:DAYLIGHT")
	line("END:VTIMEZONE")
	line("BEGIN:VEVENT")
	line("UID:" + b.uid())
	line("DTSTAMP:" + b.now().UTC().Format(stampLayout) + "Z")
	line("SUMMARY:" + escapeText(ev.Name))
	if ev.Location != "" {
		line("LOCATION:" + escapeText(ev.Location))
	}
	line(fmt.Sprintf("DTSTART;TZID=%s:%s", DefaultTimezone, firstDate.At(ev.Start, loc).Format(stampLayout)))
	line(fmt.Sprintf("DTEND;TZID=%s:%s", DefaultTimezone, firstDate.At(ev.End, loc).Format(stampLayout)))
	line(fmt.Sprintf("RRULE:FREQ=WEEKLY;BYDAY=%s;COUNT=%d", byDay(days), ev.Weeks))
	line("END:VEVENT")
	line("END:VCALENDAR")

	return sb.String(), nil
}

// escapeText escapes the characters RFC 5545 reserves in text values.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
