package main

import (
	"context"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/worklog"
)

type taskRepositoryAdapter struct {
	repo persistence.TaskRepository
}

func newTaskRepositoryAdapter(repo persistence.TaskRepository) *taskRepositoryAdapter {
	return &taskRepositoryAdapter{repo: repo}
}

func (a *taskRepositoryAdapter) CreateTask(ctx context.Context, task application.Task) (application.Task, error) {
	if err := a.repo.CreateTask(ctx, toPersistenceTask(task)); err != nil {
		return application.Task{}, err
	}
	return a.GetTask(ctx, task.ID)
}

func (a *taskRepositoryAdapter) GetTask(ctx context.Context, id string) (application.Task, error) {
	stored, err := a.repo.GetTask(ctx, id)
	if err != nil {
		return application.Task{}, err
	}
	return toApplicationTask(stored), nil
}

func (a *taskRepositoryAdapter) UpdateTask(ctx context.Context, task application.Task) (application.Task, error) {
	if err := a.repo.UpdateTask(ctx, toPersistenceTask(task)); err != nil {
		return application.Task{}, err
	}
	return a.GetTask(ctx, task.ID)
}

func (a *taskRepositoryAdapter) DeleteTask(ctx context.Context, id string) error {
	return a.repo.DeleteTask(ctx, id)
}

func (a *taskRepositoryAdapter) ListTasks(ctx context.Context, filter application.TaskFilter) ([]application.Task, error) {
	stored, err := a.repo.ListTasks(ctx, persistence.TaskFilter{Month: filter.Month, Year: filter.Year})
	if err != nil {
		return nil, err
	}
	tasks := make([]application.Task, 0, len(stored))
	for _, task := range stored {
		tasks = append(tasks, toApplicationTask(task))
	}
	return tasks, nil
}

type profileRepositoryAdapter struct {
	repo persistence.ProfileRepository
}

func newProfileRepositoryAdapter(repo persistence.ProfileRepository) *profileRepositoryAdapter {
	return &profileRepositoryAdapter{repo: repo}
}

func (a *profileRepositoryAdapter) GetProfile(ctx context.Context) (application.Profile, error) {
	stored, err := a.repo.GetProfile(ctx)
	if err != nil {
		return application.Profile{}, err
	}
	return toApplicationProfile(stored), nil
}

func (a *profileRepositoryAdapter) UpsertProfile(ctx context.Context, profile application.Profile) (application.Profile, bool, error) {
	stored, created, err := a.repo.UpsertProfile(ctx, toPersistenceProfile(profile))
	if err != nil {
		return application.Profile{}, false, err
	}
	return toApplicationProfile(stored), created, nil
}

func toPersistenceTask(task application.Task) persistence.Task {
	var segments []persistence.Segment
	for _, segment := range task.Segments {
		segments = append(segments, persistence.Segment{Start: segment.Start, End: segment.End})
	}
	return persistence.Task{
		ID:          task.ID,
		Date:        task.Date,
		Segments:    segments,
		Description: task.Description,
		Type:        string(task.Type),
		Duration:    task.Duration,
		Month:       task.Month,
		Year:        task.Year,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// toApplicationTask reads older records that only carry the flat start/end
// pair as a single segment. Unknown stored types are passed through as is.
func toApplicationTask(task persistence.Task) application.Task {
	segments := make([]worklog.TimeSegment, 0, len(task.Segments))
	for _, segment := range task.Segments {
		segments = append(segments, worklog.TimeSegment{Start: segment.Start, End: segment.End})
	}
	segments = worklog.LegacySegments(segments, task.LegacyStart, task.LegacyEnd)

	taskType, ok := worklog.ParseTaskType(task.Type)
	if !ok {
		taskType = worklog.TaskType(task.Type)
	}

	return application.Task{
		ID:          task.ID,
		Date:        task.Date,
		Segments:    segments,
		Description: task.Description,
		Type:        taskType,
		Duration:    task.Duration,
		Month:       task.Month,
		Year:        task.Year,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func toPersistenceProfile(profile application.Profile) persistence.Profile {
	return persistence.CloneProfile(persistence.Profile{
		ID:           profile.ID,
		StudentName:  profile.StudentName,
		CompanyName:  profile.CompanyName,
		Designation:  profile.Designation,
		ProjectTitle: profile.ProjectTitle,
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    profile.UpdatedAt,
	})
}

func toApplicationProfile(profile persistence.Profile) application.Profile {
	stored := persistence.CloneProfile(profile)
	return application.Profile{
		ID:           stored.ID,
		StudentName:  stored.StudentName,
		CompanyName:  stored.CompanyName,
		Designation:  stored.Designation,
		ProjectTitle: stored.ProjectTitle,
		CreatedAt:    stored.CreatedAt,
		UpdatedAt:    stored.UpdatedAt,
	}
}
