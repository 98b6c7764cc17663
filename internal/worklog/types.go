// Package worklog holds the daily work-log rules: time segment arithmetic,
// duration formatting, default day classification, and validation of task
// submissions before they reach storage.
package worklog

import "strings"

// TaskType classifies a logged day.
type TaskType string

const (
	// TypeWork marks a day with validated working time segments.
	TypeWork TaskType = "Work"
	// TypeHoliday marks a day off that is not a weekend.
	TypeHoliday TaskType = "Holiday"
	// TypeWeekend marks a Saturday or Sunday, or any day the user logs as such.
	TypeWeekend TaskType = "Weekend"
)

const (
	// MinWorkMinutes is the minimum total duration accepted for a Work day.
	MinWorkMinutes = 460
	// TargetWorkMinutes is the expected length of a full working day. It is
	// reported for display and never enforced.
	TargetWorkMinutes = 480
)

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TypeWork, TypeHoliday, TypeWeekend:
		return true
	}
	return false
}

// IsWork reports whether t requires time segments.
func (t TaskType) IsWork() bool {
	return t == TypeWork
}

// ParseTaskType resolves a task type name case-insensitively.
func ParseTaskType(value string) (TaskType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "work":
		return TypeWork, true
	case "holiday":
		return TypeHoliday, true
	case "weekend":
		return TypeWeekend, true
	}
	return "", false
}

// TimeSegment is one contiguous "HH:MM" range within a single day.
type TimeSegment struct {
	Start string
	End   string
}

// Complete reports whether both ends of the segment are filled in.
func (s TimeSegment) Complete() bool {
	return strings.TrimSpace(s.Start) != "" && strings.TrimSpace(s.End) != ""
}

// Minutes returns the segment duration, or 0 when the segment is invalid.
func (s TimeSegment) Minutes() int {
	return SegmentMinutes(s.Start, s.End)
}

func cloneSegments(segments []TimeSegment) []TimeSegment {
	if len(segments) == 0 {
		return nil
	}
	out := make([]TimeSegment, len(segments))
	copy(out, segments)
	return out
}
