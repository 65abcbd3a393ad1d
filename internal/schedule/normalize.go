package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// letterDays maps single-letter day tokens. R and U are the usual
// registrar codes for Thursday and Sunday.
var letterDays = map[string]Weekday{
	"M": Monday,
	"T": Tuesday,
	"W": Wednesday,
	"R": Thursday,
	"F": Friday,
	"S": Saturday,
	"U": Sunday,
}

// abbrevDays maps case-folded three-letter abbreviations.
var abbrevDays = map[string]Weekday{
	"mon": Monday,
	"tue": Tuesday,
	"wed": Wednesday,
	"thu": Thursday,
	"fri": Friday,
	"sat": Saturday,
	"sun": Sunday,
}

// NormalizeDay maps a single-letter or abbreviated day token to its
// canonical weekday. Unrecognized tokens pass through unchanged so the
// caller's validation can flag them instead of the parser crashing.
// Idempotent: canonical forms map to themselves.
func NormalizeDay(token string) Weekday {
	if d, ok := letterDays[token]; ok {
		return d
	}
	if d, ok := abbrevDays[strings.ToLower(token)]; ok {
		return d
	}
	return Weekday(token)
}

var (
	clockTimeRe = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::(\d{2}))?\s?(AM|PM)?`)
	bareTimeRe  = regexp.MustCompile(`\b(\d{3,6})\b`)
)

// NormalizeTime converts a time string into a LocalTime. Accepted
// forms: "H:MM", "H:MM AM/PM", "H:MM:SS", and bare 24h digit tokens
// ("1330", "103000"). When several candidates appear, the first
// left-to-right match wins.
func NormalizeTime(text string) (LocalTime, error) {
	if m := clockTimeRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		second := 0
		if m[3] != "" {
			second, _ = strconv.Atoi(m[3])
		}
		switch strings.ToUpper(m[4]) {
		case "AM":
			if hour == 12 {
				hour = 0
			}
		case "PM":
			if hour != 12 {
				hour += 12
			}
		}
		if hour <= 23 && minute <= 59 && second <= 59 {
			return LocalTime{Hour: hour, Minute: minute, Second: second}, nil
		}
	}
	if m := bareTimeRe.FindStringSubmatch(text); m != nil {
		if t, ok := parseBareClock(m[1]); ok {
			return t, nil
		}
	}
	return LocalTime{}, fmt.Errorf("%q: %w", text, ErrUnparseableTime)
}

// parseBareClock interprets a run of 3-6 digits as HMM, HHMM, or
// HHMMSS.
func parseBareClock(digits string) (LocalTime, bool) {
	var hour, minute, second int
	switch len(digits) {
	case 3:
		hour, _ = strconv.Atoi(digits[:1])
		minute, _ = strconv.Atoi(digits[1:])
	case 4:
		hour, _ = strconv.Atoi(digits[:2])
		minute, _ = strconv.Atoi(digits[2:])
	case 6:
		hour, _ = strconv.Atoi(digits[:2])
		minute, _ = strconv.Atoi(digits[2:4])
		second, _ = strconv.Atoi(digits[4:])
	default:
		return LocalTime{}, false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return LocalTime{}, false
	}
	return LocalTime{Hour: hour, Minute: minute, Second: second}, true
}

var (
	monthDateRe   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+(\d{1,2})(?:,\s*(\d{4}))?`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// NormalizeDate converts a month-name or numeric date string into a
// civil Date. When the year is omitted, referenceYear is assumed.
// When both forms appear, the first left-to-right match wins.
func NormalizeDate(text string, referenceYear int) (Date, error) {
	wordLoc := monthDateRe.FindStringSubmatchIndex(text)
	numLoc := numericDateRe.FindStringSubmatchIndex(text)

	useWord := wordLoc != nil && (numLoc == nil || wordLoc[0] <= numLoc[0])
	switch {
	case useWord:
		m := submatches(text, wordLoc)
		month := monthsByPrefix[strings.ToLower(m[1][:3])]
		day, _ := strconv.Atoi(m[2])
		year := referenceYear
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return makeDate(text, year, month, day)
	case numLoc != nil:
		m := submatches(text, numLoc)
		monthNum, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := referenceYear
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if monthNum < 1 || monthNum > 12 {
			break
		}
		return makeDate(text, year, time.Month(monthNum), day)
	}
	return Date{}, fmt.Errorf("%q: %w", text, ErrUnparseableDate)
}

// makeDate validates the day against the actual month length.
func makeDate(text string, year int, month time.Month, day int) (Date, error) {
	if day < 1 || day > 31 {
		return Date{}, fmt.Errorf("%q: %w", text, ErrUnparseableDate)
	}
	if t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC); t.Day() != day {
		return Date{}, fmt.Errorf("%q: %w", text, ErrUnparseableDate)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// submatches resolves FindStringSubmatchIndex pairs into strings,
// with empty strings for absent groups.
func submatches(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}
