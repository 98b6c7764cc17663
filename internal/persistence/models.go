package persistence

import "time"

// Segment is a stored "HH:MM" time range.
type Segment struct {
	Start string
	End   string
}

// Task is one stored day of the work log. Older records may carry the flat
// LegacyStart/LegacyEnd pair instead of Segments; readers normalize them and
// the store never rewrites them on its own.
type Task struct {
	ID          string
	Date        time.Time
	Segments    []Segment
	LegacyStart string
	LegacyEnd   string
	Description string
	Type        string
	Duration    string
	Month       int
	Year        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is the singleton identity record printed on reports.
type Profile struct {
	ID           string
	StudentName  string
	CompanyName  string
	Designation  string
	ProjectTitle *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CloneTask returns a copy of task that shares no slices with it.
func CloneTask(task Task) Task {
	if task.Segments != nil {
		segments := make([]Segment, len(task.Segments))
		copy(segments, task.Segments)
		task.Segments = segments
	}
	return task
}

// CloneProfile returns a copy of profile that shares no pointers with it.
func CloneProfile(profile Profile) Profile {
	if profile.ProjectTitle != nil {
		title := *profile.ProjectTitle
		profile.ProjectTitle = &title
	}
	return profile
}
