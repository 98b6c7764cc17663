package persistence

import "context"

// TaskFilter narrows task listings. Nil fields match every task.
type TaskFilter struct {
	Month *int
	Year  *int
}

// Matches reports whether task satisfies the filter.
func (f TaskFilter) Matches(task Task) bool {
	if f.Month != nil && task.Month != *f.Month {
		return false
	}
	if f.Year != nil && task.Year != *f.Year {
		return false
	}
	return true
}

// TaskRepository stores work log tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	UpdateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	// ListTasks returns tasks ordered by date ascending, then creation time
	// and id.
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// ProfileRepository stores the report profile.
type ProfileRepository interface {
	// GetProfile returns the most recently updated profile or ErrNotFound.
	GetProfile(ctx context.Context) (Profile, error)
	// UpsertProfile updates the existing profile, keeping its id and
	// creation time, or inserts profile when none exists. created reports
	// which happened.
	UpsertProfile(ctx context.Context, profile Profile) (stored Profile, created bool, err error)
}

// Store is a storage backend with an explicit lifecycle.
type Store interface {
	TaskRepository
	ProfileRepository
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
