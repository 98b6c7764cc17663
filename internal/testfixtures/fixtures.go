package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/worklog"
)

var taskCounter atomic.Uint64

// referenceTime is a Tuesday so that offsets of a few days stay on weekdays.
var referenceTime = time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the baseline instant used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// TaskFixture is a deterministic work log entry. Duration, Month and Year are
// derived from Date, Type and Segments unless set explicitly.
type TaskFixture struct {
	ID          string
	Date        time.Time
	Segments    []worklog.TimeSegment
	Description string
	Type        worklog.TaskType
	Duration    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskOption configures a TaskFixture.
type TaskOption func(*TaskFixture)

// NewTaskFixture returns a full Work day on the reference date by default.
func NewTaskFixture(opts ...TaskOption) TaskFixture {
	idx := taskCounter.Add(1)
	created := referenceTime.Add(time.Duration(idx) * time.Second)
	fixture := TaskFixture{
		ID:          fmt.Sprintf("task-%03d", idx),
		Date:        startOfDay(referenceTime),
		Segments:    []worklog.TimeSegment{{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "18:00"}},
		Description: fmt.Sprintf("Fixture task %d", idx),
		Type:        worklog.TypeWork,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	if fixture.Type != worklog.TypeWork {
		fixture.Segments = nil
	}
	if fixture.Duration == "" {
		if fixture.Type == worklog.TypeWork {
			fixture.Duration = worklog.FormatDuration(worklog.TotalMinutes(fixture.Segments))
		} else {
			fixture.Duration = string(fixture.Type)
		}
	}
	return fixture
}

func WithTaskID(id string) TaskOption {
	return func(f *TaskFixture) { f.ID = id }
}

// WithTaskDate sets the calendar day; the time of day is dropped.
func WithTaskDate(date time.Time) TaskOption {
	return func(f *TaskFixture) { f.Date = startOfDay(date) }
}

// WithTaskDayOffset moves the task n days from the reference date.
func WithTaskDayOffset(n int) TaskOption {
	return func(f *TaskFixture) { f.Date = startOfDay(referenceTime).AddDate(0, 0, n) }
}

func WithTaskDescription(description string) TaskOption {
	return func(f *TaskFixture) { f.Description = description }
}

// WithTaskType sets the type. Non-Work types drop their segments.
func WithTaskType(taskType worklog.TaskType) TaskOption {
	return func(f *TaskFixture) { f.Type = taskType }
}

// WithTaskSegments replaces the time segments with start/end pairs.
func WithTaskSegments(pairs ...string) TaskOption {
	return func(f *TaskFixture) {
		segments := make([]worklog.TimeSegment, 0, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			segments = append(segments, worklog.TimeSegment{Start: pairs[i], End: pairs[i+1]})
		}
		f.Segments = segments
	}
}

func WithTaskTimestamps(created, updated time.Time) TaskOption {
	return func(f *TaskFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Task.
func (f TaskFixture) Application() application.Task {
	segments := make([]worklog.TimeSegment, len(f.Segments))
	copy(segments, f.Segments)
	return application.Task{
		ID:          f.ID,
		Date:        f.Date,
		Segments:    segments,
		Description: f.Description,
		Type:        f.Type,
		Duration:    f.Duration,
		Month:       int(f.Date.Month()),
		Year:        f.Date.Year(),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a stored persistence.Task.
func (f TaskFixture) Persistence() persistence.Task {
	var segments []persistence.Segment
	for _, segment := range f.Segments {
		segments = append(segments, persistence.Segment{Start: segment.Start, End: segment.End})
	}
	return persistence.Task{
		ID:          f.ID,
		Date:        f.Date,
		Segments:    segments,
		Description: f.Description,
		Type:        string(f.Type),
		Duration:    f.Duration,
		Month:       int(f.Date.Month()),
		Year:        f.Date.Year(),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the create request that would produce the fixture.
func (f TaskFixture) Input() application.TaskInput {
	segments := make([]worklog.TimeSegment, len(f.Segments))
	copy(segments, f.Segments)
	return application.TaskInput{
		Date:        worklog.FormatDate(f.Date),
		Description: f.Description,
		Type:        string(f.Type),
		Segments:    segments,
	}
}

// ProfileFixture is a deterministic report profile.
type ProfileFixture struct {
	ID           string
	StudentName  string
	CompanyName  string
	Designation  string
	ProjectTitle *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileOption configures a ProfileFixture.
type ProfileOption func(*ProfileFixture)

func NewProfileFixture(opts ...ProfileOption) ProfileFixture {
	title := "Work log service"
	fixture := ProfileFixture{
		ID:           "profile-001",
		StudentName:  "Asha Verma",
		CompanyName:  "Northwind Labs",
		Designation:  "Software Engineering Intern",
		ProjectTitle: &title,
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithStudentName(name string) ProfileOption {
	return func(f *ProfileFixture) { f.StudentName = name }
}

// WithProjectTitle sets the title; nil clears it.
func WithProjectTitle(title *string) ProfileOption {
	return func(f *ProfileFixture) { f.ProjectTitle = title }
}

func (f ProfileFixture) Application() application.Profile {
	return application.Profile{
		ID:           f.ID,
		StudentName:  f.StudentName,
		CompanyName:  f.CompanyName,
		Designation:  f.Designation,
		ProjectTitle: copyString(f.ProjectTitle),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func (f ProfileFixture) Persistence() persistence.Profile {
	return persistence.Profile{
		ID:           f.ID,
		StudentName:  f.StudentName,
		CompanyName:  f.CompanyName,
		Designation:  f.Designation,
		ProjectTitle: copyString(f.ProjectTitle),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the save request that would produce the fixture.
func (f ProfileFixture) Input() application.ProfileInput {
	return application.ProfileInput{
		StudentName:  f.StudentName,
		CompanyName:  f.CompanyName,
		Designation:  f.Designation,
		ProjectTitle: copyString(f.ProjectTitle),
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
