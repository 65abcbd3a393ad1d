package schedule

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxTitleLen bounds course names and assessment titles taken from
// free-form syllabus lines.
const maxTitleLen = 80

// ExtractLines splits raw extracted PDF text into clean lines:
// internal whitespace runs collapse to single spaces, edges are
// trimmed, and empty lines are dropped. The sequence is lazy, finite,
// and restartable.
func ExtractLines(rawText string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.Lines(rawText) {
			clean := strings.Join(strings.Fields(line), " ")
			if clean == "" {
				continue
			}
			if !yield(clean) {
				return
			}
		}
	}
}

// FindCourseName picks the course name from cleaned lines: the first
// "Course:" label wins, else the first line truncated to 80 chars,
// else the source filename.
func FindCourseName(lines iter.Seq[string], filename string) string {
	first := ""
	for ln := range lines {
		if _, after, ok := strings.Cut(ln, "Course:"); ok {
			if name := strings.TrimSpace(after); name != "" {
				return name
			}
		}
		if first == "" {
			first = ln
		}
	}
	if first != "" {
		return truncate(first, maxTitleLen)
	}
	return filename
}

const dayToken = `(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun|[MTWRFSU])`

// meetingRe matches a day-token run followed by a time range. The run
// accepts separators (/ , & - and spaces) as well as run-together
// single letters like "MWF".
var meetingRe = regexp.MustCompile(
	`\b(` + dayToken + `(?:[/, &-]*` + dayToken + `)*)\s+` +
		`(\d{1,2}:\d{2}\s?(?:AM|PM|am|pm)?)\s*-\s*(\d{1,2}:\d{2}\s?(?:AM|PM|am|pm)?)`)

// daySeparatorRe splits a day-token run into its separated tokens.
var daySeparatorRe = regexp.MustCompile(`[/, &-]+`)

// MeetingMatch is one raw meeting-pattern hit, prior to normalization.
type MeetingMatch struct {
	Line     string
	DaysRaw  string
	StartRaw string
	EndRaw   string
}

// FindMeetingBlocks scans cleaned lines for meeting patterns. A line
// matches at most once.
func FindMeetingBlocks(lines iter.Seq[string]) []MeetingMatch {
	var out []MeetingMatch
	for ln := range lines {
		m := meetingRe.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		out = append(out, MeetingMatch{
			Line:     ln,
			DaysRaw:  m[1],
			StartRaw: m[2],
			EndRaw:   m[3],
		})
	}
	return out
}

// SplitDayTokens breaks a raw day run into individual tokens.
// Run-together single-letter codes ("MWF", "TR") explode into their
// letters; separated tokens pass through for NormalizeDay.
func SplitDayTokens(daysRaw string) []string {
	var out []string
	for _, tok := range daySeparatorRe.Split(daysRaw, -1) {
		if tok == "" {
			continue
		}
		if len(tok) > 1 && allDayLetters(tok) {
			for _, r := range tok {
				out = append(out, string(r))
			}
			continue
		}
		out = append(out, tok)
	}
	return out
}

func allDayLetters(tok string) bool {
	for _, r := range tok {
		if !strings.ContainsRune("MTWRFSU", r) {
			return false
		}
	}
	return true
}

var (
	deadlineRe     = regexp.MustCompile(`(?i)\b(due|deadline|exam|quiz|project|milestone|presentation|final)\b`)
	explicitTimeRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\s?(?:AM|PM|am|pm)?`)
)

// AssessmentMatch is one raw deadline-pattern hit.
type AssessmentMatch struct {
	Line    string
	Title   string
	DateRaw string
	TimeRaw string
}

// FindAssessmentLines flags lines carrying a whole-word deadline
// keyword and a recognizable date token. The assessment title is the
// line with all date tokens removed and whitespace collapsed,
// defaulting to "Due Item".
func FindAssessmentLines(lines iter.Seq[string]) []AssessmentMatch {
	var out []AssessmentMatch
	for ln := range lines {
		if !deadlineRe.MatchString(ln) {
			continue
		}
		dateRaw := firstDateToken(ln)
		if dateRaw == "" {
			continue
		}
		out = append(out, AssessmentMatch{
			Line:    ln,
			Title:   assessmentTitle(ln),
			DateRaw: dateRaw,
			TimeRaw: explicitTimeRe.FindString(ln),
		})
	}
	return out
}

// firstDateToken returns the earliest date token on the line, month
// names taking precedence over numeric forms at equal offsets.
func firstDateToken(ln string) string {
	wordLoc := monthDateRe.FindStringIndex(ln)
	numLoc := numericDateRe.FindStringIndex(ln)
	switch {
	case wordLoc != nil && (numLoc == nil || wordLoc[0] <= numLoc[0]):
		return ln[wordLoc[0]:wordLoc[1]]
	case numLoc != nil:
		return ln[numLoc[0]:numLoc[1]]
	}
	return ""
}

func assessmentTitle(ln string) string {
	title := monthDateRe.ReplaceAllString(ln, "")
	title = numericDateRe.ReplaceAllString(title, "")
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = "Due Item"
	}
	return truncate(title, maxTitleLen)
}

// truncate cuts s to at most n bytes, backing off to a rune boundary
// so titles from arbitrary PDF text stay valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}
