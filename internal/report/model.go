// Package report turns a month of logged tasks into a printable internship
// report: task pages, a monthly summary, the composed document, and its PDF
// rendering.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/internlog/internal/worklog"
)

// TasksPerPage is the number of task rows on one report page.
const TasksPerPage = 18

// ErrInvalidPeriod indicates a month outside 1-12 or a non-positive year.
var ErrInvalidPeriod = errors.New("report: invalid report period")

// Task is the report view of one logged day.
type Task struct {
	ID          string
	Date        time.Time
	Description string
	Type        worklog.TaskType
	Duration    string
}

// Profile holds the identity fields printed on the first page.
type Profile struct {
	StudentName  string
	CompanyName  string
	Designation  string
	ProjectTitle string
}

// Draft carries the narrative fields entered for a single report. It is never
// persisted.
type Draft struct {
	Month             int
	Year              int
	Objectives        string
	Summary           string
	LearningOutcomes  []string
	ToolsTechnologies []string
}

// Validate checks the report period.
func (d Draft) Validate() error {
	return ValidatePeriod(d.Month, d.Year)
}

// ValidatePeriod checks that month and year name a calendar month.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

// MonthLabel renders "{MonthName} {Year}", e.g. "March 2024".
func MonthLabel(month, year int) string {
	return fmt.Sprintf("%s %d", monthName(month), year)
}

// FileName returns the export file name for a report period.
func FileName(month, year int) string {
	return fmt.Sprintf("internship_report_%s_%d.pdf", monthName(month), year)
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return time.Month(month).String()
}

func nonBlank(items []string) []string {
	var out []string
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
