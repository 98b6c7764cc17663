package application

import (
	"time"

	"github.com/example/internlog/internal/worklog"
)

// Task is a validated day of the work log.
type Task struct {
	ID          string
	Date        time.Time
	Segments    []worklog.TimeSegment
	Description string
	Type        worklog.TaskType
	Duration    string
	Month       int
	Year        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskInput captures caller provided task fields. StartTime and EndTime are
// the older single-range shape and are used only when Segments is empty.
type TaskInput struct {
	Date        string
	Description string
	Type        string
	Segments    []worklog.TimeSegment
	StartTime   string
	EndTime     string
}

// TaskPatch lists the fields an update replaces. Nil fields keep the stored
// value.
type TaskPatch struct {
	ID          string
	Date        *string
	Description *string
	Type        *string
	Segments    *[]worklog.TimeSegment
	StartTime   *string
	EndTime     *string
}

// TaskFilter narrows a task listing to a month and/or year.
type TaskFilter struct {
	Month *int
	Year  *int
}

// Profile is the identity printed on reports.
type Profile struct {
	ID           string
	StudentName  string
	CompanyName  string
	Designation  string
	ProjectTitle *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileInput captures caller provided profile fields. A nil ProjectTitle
// keeps the stored title.
type ProfileInput struct {
	StudentName  string
	CompanyName  string
	Designation  string
	ProjectTitle *string
}

// ExportResult is a rendered report.
type ExportResult struct {
	FileName string
	ETag     string
	Pages    int
	Content  []byte
}

func cloneTask(task Task) Task {
	if task.Segments != nil {
		segments := make([]worklog.TimeSegment, len(task.Segments))
		copy(segments, task.Segments)
		task.Segments = segments
	}
	return task
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
