package worklog

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptySegments indicates a Work submission without any complete segment.
	ErrEmptySegments = errors.New("worklog: no time segments")
	// ErrInvalidSegment indicates a segment whose end is not after its start.
	ErrInvalidSegment = errors.New("worklog: invalid time segment")
	// ErrBelowMinimum indicates a Work day shorter than MinWorkMinutes.
	ErrBelowMinimum = errors.New("worklog: below minimum work duration")
)

// SegmentErrorKind names the reason a Work submission was rejected.
type SegmentErrorKind string

const (
	EmptySegments  SegmentErrorKind = "empty_segments"
	InvalidSegment SegmentErrorKind = "invalid_segment"
	BelowMinimum   SegmentErrorKind = "below_minimum"
)

// SegmentError describes a rejected set of Work segments.
type SegmentError struct {
	Kind SegmentErrorKind
	// Index is the position of the offending segment among the complete
	// segments for InvalidSegment, -1 otherwise.
	Index int
	// Minutes is the computed total for BelowMinimum.
	Minutes int
}

func (e *SegmentError) Error() string {
	return e.Message()
}

// Message returns the text shown to the user.
func (e *SegmentError) Message() string {
	switch e.Kind {
	case EmptySegments:
		return "Please add at least one time segment"
	case InvalidSegment:
		return "End time must be after start time"
	case BelowMinimum:
		return fmt.Sprintf("Minimum required: %s", FormatDuration(MinWorkMinutes))
	}
	return "invalid time segments"
}

// Is matches the sentinel for the error kind.
func (e *SegmentError) Is(target error) bool {
	switch e.Kind {
	case EmptySegments:
		return target == ErrEmptySegments
	case InvalidSegment:
		return target == ErrInvalidSegment
	case BelowMinimum:
		return target == ErrBelowMinimum
	}
	return false
}

// Result is an accepted Work day.
type Result struct {
	Segments []TimeSegment
	Minutes  int
	Duration string
}

// ShortOfTarget returns how many minutes the day falls short of
// TargetWorkMinutes, or 0 when it meets the target.
func (r Result) ShortOfTarget() int {
	if r.Minutes >= TargetWorkMinutes {
		return 0
	}
	return TargetWorkMinutes - r.Minutes
}

// DefaultType suggests a type for date: Weekend on Saturday and Sunday, Work
// otherwise. Callers may submit any type for any date.
func DefaultType(date time.Time) TaskType {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return TypeWeekend
	}
	return TypeWork
}

// ValidateWork checks the segments of a Work day. Segments with a blank start
// or end are dropped before validation.
func ValidateWork(segments []TimeSegment) (Result, error) {
	kept := make([]TimeSegment, 0, len(segments))
	for _, segment := range segments {
		if segment.Complete() {
			kept = append(kept, segment)
		}
	}
	if len(kept) == 0 {
		return Result{}, &SegmentError{Kind: EmptySegments, Index: -1}
	}

	total := 0
	for i, segment := range kept {
		minutes := segment.Minutes()
		if minutes <= 0 {
			return Result{}, &SegmentError{Kind: InvalidSegment, Index: i}
		}
		total += minutes
	}
	if total < MinWorkMinutes {
		return Result{}, &SegmentError{Kind: BelowMinimum, Index: -1, Minutes: total}
	}

	return Result{
		Segments: kept,
		Minutes:  total,
		Duration: FormatDuration(total),
	}, nil
}
