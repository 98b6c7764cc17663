package worklog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var durationPattern = regexp.MustCompile(`(\d+)h\s*(\d+)m`)

// ClockMinutes converts "HH:MM" to minutes since midnight.
// The second result is false when the value is not a valid time of day.
func ClockMinutes(value string) (int, bool) {
	hourPart, minutePart, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, false
	}
	hours, err := strconv.Atoi(hourPart)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(minutePart)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SegmentMinutes returns end-start in minutes. It returns 0 when either value
// is unparsable or when end is not later than start; segments never span
// midnight.
func SegmentMinutes(start, end string) int {
	startMin, ok := ClockMinutes(start)
	if !ok {
		return 0
	}
	endMin, ok := ClockMinutes(end)
	if !ok {
		return 0
	}
	if endMin <= startMin {
		return 0
	}
	return endMin - startMin
}

// TotalMinutes sums SegmentMinutes across segments. Invalid segments add 0.
func TotalMinutes(segments []TimeSegment) int {
	total := 0
	for _, segment := range segments {
		total += SegmentMinutes(segment.Start, segment.End)
	}
	return total
}

// FormatDuration renders minutes as "{h}h {m}m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// ParseDuration reads the first "{h}h {m}m" occurrence in value.
func ParseDuration(value string) (int, bool) {
	match := durationPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}
