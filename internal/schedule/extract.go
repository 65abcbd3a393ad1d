package schedule

import (
	"log/slog"
	"time"
)

// Default semester window, applied to every meeting block when no
// override is configured. A fixed heuristic (current-year Jan 6 to
// Apr 25), documented as a known approximation rather than a
// guarantee.
const (
	defaultSemesterStartMonth = time.January
	defaultSemesterStartDay   = 6
	defaultSemesterEndMonth   = time.April
	defaultSemesterEndDay     = 25
)

// Extractor turns raw syllabus text into a structured Course record
// by combining the segmenter and the token normalizer. The zero value
// is usable; overrides are optional.
type Extractor struct {
	// SemesterStart and SemesterEnd override the default semester
	// window when both are non-zero.
	SemesterStart Date
	SemesterEnd   Date

	// Now supplies the reference year for dates without one. Defaults
	// to time.Now.
	Now func() time.Time

	// Logger records skipped lines. Defaults to slog.Default.
	Logger *slog.Logger
}

// Extract produces a Course record for one document. Line-level
// parse failures skip that line only; the document fails as a whole
// only when it has no extractable text.
func (e *Extractor) Extract(filename, rawText string) (Course, error) {
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}

	lines := ExtractLines(rawText)
	empty := true
	for range lines {
		empty = false
		break
	}
	if empty {
		return Course{}, ErrEmptyDocumentText
	}

	name := FindCourseName(lines, filename)
	year := e.referenceYear()
	semStart, semEnd := e.semesterRange(year)

	var blocks []MeetingBlock
	for _, m := range FindMeetingBlocks(lines) {
		mb, ok := e.meetingBlock(m, semStart, semEnd)
		if !ok {
			log.Debug("skipping meeting line", "line", m.Line)
			continue
		}
		blocks = append(blocks, mb)
	}

	var assessments []Assessment
	for _, m := range FindAssessmentLines(lines) {
		a, ok := e.assessment(m, year)
		if !ok {
			log.Debug("skipping assessment line", "line", m.Line)
			continue
		}
		assessments = append(assessments, a)
	}

	course := Course{
		ID:            CourseID(name, filename),
		Name:          name,
		MeetingBlocks: blocks,
		Assessments:   assessments,
	}
	log.Info("extracted course",
		"course", course.ID,
		"meeting_blocks", len(blocks),
		"assessments", len(assessments),
	)
	return course, nil
}

func (e *Extractor) referenceYear() int {
	now := e.Now
	if now == nil {
		now = time.Now
	}
	return now().Year()
}

func (e *Extractor) semesterRange(year int) (Date, Date) {
	if !e.SemesterStart.IsZero() && !e.SemesterEnd.IsZero() {
		return e.SemesterStart, e.SemesterEnd
	}
	start := Date{Year: year, Month: defaultSemesterStartMonth, Day: defaultSemesterStartDay}
	end := Date{Year: year, Month: defaultSemesterEndMonth, Day: defaultSemesterEndDay}
	return start, end
}

// meetingBlock normalizes one raw meeting match. Unrecognized day
// tokens or unparseable times disqualify the match.
func (e *Extractor) meetingBlock(m MeetingMatch, semStart, semEnd Date) (MeetingBlock, bool) {
	var days []Weekday
	for _, tok := range SplitDayTokens(m.DaysRaw) {
		d := NormalizeDay(tok)
		if !d.Valid() {
			return MeetingBlock{}, false
		}
		days = append(days, d)
	}
	days = SortDays(days)
	if len(days) == 0 {
		return MeetingBlock{}, false
	}

	start, err := NormalizeTime(m.StartRaw)
	if err != nil {
		return MeetingBlock{}, false
	}
	end, err := NormalizeTime(m.EndRaw)
	if err != nil {
		return MeetingBlock{}, false
	}
	if !start.Before(end) {
		return MeetingBlock{}, false
	}

	return MeetingBlock{
		Days:       days,
		StartLocal: start,
		EndLocal:   end,
		StartDate:  semStart,
		EndDate:    semEnd,
		Kind:       "lecture",
	}, true
}

// assessment normalizes one raw deadline match. Deadlines with no
// explicit time fall to 23:59 local, the end-of-day convention.
func (e *Extractor) assessment(m AssessmentMatch, year int) (Assessment, bool) {
	date, err := NormalizeDate(m.DateRaw, year)
	if err != nil {
		return Assessment{}, false
	}

	due := LocalTime{Hour: 23, Minute: 59}
	if m.TimeRaw != "" {
		if t, err := NormalizeTime(m.TimeRaw); err == nil {
			due = t
		}
	}

	return Assessment{
		Title:    m.Title,
		DueLocal: DateTime{Date: date, Time: due},
		Category: CategoryAssignment,
	}, true
}
