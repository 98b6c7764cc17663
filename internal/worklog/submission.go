package worklog

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Submission is raw task input as received from a client or read back from
// storage. LegacyStart and LegacyEnd carry the older flat single-range shape.
type Submission struct {
	Date        string
	Description string
	Type        string
	Segments    []TimeSegment
	LegacyStart string
	LegacyEnd   string
}

// Entry is a validated task value ready to persist.
type Entry struct {
	Date        time.Time
	Description string
	Type        TaskType
	Segments    []TimeSegment
	Minutes     int
	Duration    string
	Month       int
	Year        int
}

// FieldErrors maps submission fields to user-facing messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return "worklog: invalid submission"
	}
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, f[field]))
	}
	return "worklog: " + strings.Join(parts, "; ")
}

// LegacySegments returns segments unchanged when non-empty, otherwise a single
// segment built from the legacy pair when both ends are present.
func LegacySegments(segments []TimeSegment, start, end string) []TimeSegment {
	if len(segments) > 0 {
		return segments
	}
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return segments
	}
	return []TimeSegment{{Start: start, End: end}}
}

// Normalize converts the legacy single-range shape into a one-element segment
// list and clears the legacy fields. Applying it twice has no further effect.
func Normalize(s Submission) Submission {
	s.Segments = cloneSegments(LegacySegments(s.Segments, s.LegacyStart, s.LegacyEnd))
	s.LegacyStart = ""
	s.LegacyEnd = ""
	return s
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp and returns the
// calendar day at UTC midnight.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("worklog: parse date %q: %w", value, err)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders the calendar day as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// Prepare validates a submission and builds the value to store. Missing
// fields are reported together as FieldErrors; Work segment failures are
// returned as *SegmentError.
func Prepare(s Submission) (Entry, error) {
	s = Normalize(s)

	problems := FieldErrors{}
	var date time.Time
	if strings.TrimSpace(s.Date) == "" {
		problems["date"] = "date is required"
	} else if parsed, err := ParseDate(s.Date); err != nil {
		problems["date"] = "date must be formatted as YYYY-MM-DD"
	} else {
		date = parsed
	}

	description := strings.TrimSpace(s.Description)
	if description == "" {
		problems["description"] = "description is required"
	}

	var taskType TaskType
	if strings.TrimSpace(s.Type) == "" {
		problems["type"] = "type is required"
	} else if parsed, ok := ParseTaskType(s.Type); !ok {
		problems["type"] = "type must be one of Work, Holiday, Weekend"
	} else {
		taskType = parsed
	}

	if len(problems) > 0 {
		return Entry{}, problems
	}

	entry := Entry{
		Date:        date,
		Description: description,
		Type:        taskType,
		Month:       int(date.Month()),
		Year:        date.Year(),
	}

	if !taskType.IsWork() {
		entry.Duration = string(taskType)
		return entry, nil
	}

	result, err := ValidateWork(s.Segments)
	if err != nil {
		return Entry{}, err
	}
	entry.Segments = result.Segments
	entry.Minutes = result.Minutes
	entry.Duration = result.Duration
	return entry, nil
}
