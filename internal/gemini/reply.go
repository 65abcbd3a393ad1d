package gemini

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syllacal/syllacal/internal/schedule"
)

// defaultNumWeeks is assumed when the model omits the optional weeks
// field.
const defaultNumWeeks = 10

// MalformedResponseError means the model reply did not match the
// expected semicolon-delimited shape. The raw reply is preserved for
// diagnostics; the call is not retried.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("model reply not in expected format: %q", e.Raw)
}

// MalformedDayListError means the day-list field was not a bracketed
// comma-separated list of day indexes 0..6.
type MalformedDayListError struct {
	Field string
}

func (e *MalformedDayListError) Error() string {
	return fmt.Sprintf("could not parse day list: %q", e.Field)
}

// WeeklyMeeting is the structured result of one model extraction:
// a weekly recurring class meeting.
type WeeklyMeeting struct {
	EventName string
	Days      []schedule.Weekday
	Start     schedule.LocalTime
	End       schedule.LocalTime
	Location  string
	NumWeeks  int
}

// ParseReply parses the model's reply against the fixed contract
//
//	ClassName; [day,day,...]; StartTime; EndTime; Location[; NumWeeks]
//
// with days encoded 0=Monday..6=Sunday and times as HHMMSS. Fewer
// than five fields is a MalformedResponseError carrying the raw text.
// NumWeeks defaults when absent; a present but non-numeric value is a
// fatal error for that field.
func ParseReply(raw string) (WeeklyMeeting, error) {
	fields := strings.Split(strings.TrimSpace(raw), "; ")
	if len(fields) < 5 {
		return WeeklyMeeting{}, &MalformedResponseError{Raw: raw}
	}

	days, err := parseDayList(fields[1])
	if err != nil {
		return WeeklyMeeting{}, err
	}

	start, err := schedule.NormalizeTime(fields[2])
	if err != nil {
		return WeeklyMeeting{}, fmt.Errorf("start time: %w", err)
	}
	end, err := schedule.NormalizeTime(fields[3])
	if err != nil {
		return WeeklyMeeting{}, fmt.Errorf("end time: %w", err)
	}

	numWeeks := defaultNumWeeks
	if len(fields) > 5 {
		numWeeks, err = strconv.Atoi(strings.TrimSpace(fields[5]))
		if err != nil || numWeeks < 1 {
			return WeeklyMeeting{}, fmt.Errorf("number of weeks %q is not a positive integer", fields[5])
		}
	}

	return WeeklyMeeting{
		EventName: strings.TrimSpace(fields[0]) + " Lecture",
		Days:      days,
		Start:     start,
		End:       end,
		Location:  strings.TrimSpace(fields[4]),
		NumWeeks:  numWeeks,
	}, nil
}

// parseDayList accepts only a bracketed comma-separated list of small
// integers, e.g. "[0,2,4]". Anything else is a MalformedDayListError.
// This replaces the original free-form literal evaluation of model
// output with a restrictive grammar.
func parseDayList(field string) ([]schedule.Weekday, error) {
	s := strings.TrimSpace(field)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, &MalformedDayListError{Field: field}
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, &MalformedDayListError{Field: field}
	}

	var days []schedule.Weekday
	for _, part := range strings.Split(inner, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, &MalformedDayListError{Field: field}
		}
		d, ok := schedule.WeekdayFromIndex(n)
		if !ok {
			return nil, &MalformedDayListError{Field: field}
		}
		days = append(days, d)
	}
	return schedule.SortDays(days), nil
}
