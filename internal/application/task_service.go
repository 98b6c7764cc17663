package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/worklog"
)

// TaskRepository captures the persistence operations needed by the service.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	UpdateTask(ctx context.Context, task Task) (Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
}

// TaskService validates and persists work log entries.
type TaskService struct {
	tasks       TaskRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	summaries   *SummaryCache
}

// NewTaskService constructs a task service with the provided dependencies.
func NewTaskService(tasks TaskRepository, idGenerator func() string, now func() time.Time) *TaskService {
	return NewTaskServiceWithLogger(tasks, idGenerator, now, nil)
}

// NewTaskServiceWithLogger constructs a task service with a specified logger.
func NewTaskServiceWithLogger(tasks TaskRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{tasks: tasks, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// InvalidateOnWrite purges cache after every successful task write.
func (s *TaskService) InvalidateOnWrite(cache *SummaryCache) {
	s.summaries = cache
}

func (s *TaskService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TaskService", operation, attrs...)
}

// ListTasks returns tasks matching filter in date order.
func (s *TaskService) ListTasks(ctx context.Context, filter TaskFilter) (tasks []Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if s.tasks == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListTasks", filterAttrs(filter)...)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list tasks", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "tasks listed", "count", len(tasks))
	}()

	tasks, err = s.tasks.ListTasks(ctx, filter)
	if err != nil {
		err = mapTaskRepoError("list tasks", err)
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single task.
func (s *TaskService) GetTask(ctx context.Context, id string) (Task, error) {
	if s == nil {
		return Task{}, fmt.Errorf("TaskService is nil")
	}
	if strings.TrimSpace(id) == "" {
		return Task{}, missingIDError()
	}
	if s.tasks == nil {
		return Task{}, ErrNotFound
	}
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return Task{}, mapTaskRepoError("get task", err)
	}
	return task, nil
}

// CreateTask validates input and persists a new task.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTask", "date", input.Date, "type", input.Type)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("task_id", task.ID).InfoContext(ctx, "task created", "duration", task.Duration)
	}()

	entry, prepErr := worklog.Prepare(worklog.Submission{
		Date:        input.Date,
		Description: input.Description,
		Type:        input.Type,
		Segments:    input.Segments,
		LegacyStart: input.StartTime,
		LegacyEnd:   input.EndTime,
	})
	if prepErr != nil {
		err = validationFromWorklog(prepErr)
		return
	}

	now := s.now().UTC()
	task = taskFromEntry(entry)
	task.ID = s.idGenerator()
	task.CreatedAt = now
	task.UpdatedAt = now

	if s.tasks == nil {
		return
	}

	var persisted Task
	persisted, err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		err = mapTaskRepoError("create task", err)
		return
	}

	task = persisted
	s.purgeSummaries()
	return
}

// UpdateTask merges patch into the stored task and re-validates the result
// exactly like a new submission.
func (s *TaskService) UpdateTask(ctx context.Context, patch TaskPatch) (task Task, err error) {
	if s == nil {
		err = fmt.Errorf("TaskService is nil")
		return
	}
	if strings.TrimSpace(patch.ID) == "" {
		err = missingIDError()
		return
	}
	if s.tasks == nil {
		err = fmt.Errorf("task repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTask", "task_id", patch.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update task", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "task updated", "duration", task.Duration)
	}()

	var existing Task
	existing, err = s.tasks.GetTask(ctx, patch.ID)
	if err != nil {
		err = mapTaskRepoError("get task", err)
		return
	}

	entry, prepErr := worklog.Prepare(applyPatch(existing, patch))
	if prepErr != nil {
		err = validationFromWorklog(prepErr)
		return
	}

	updated := taskFromEntry(entry)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now().UTC()

	task, err = s.tasks.UpdateTask(ctx, updated)
	if err != nil {
		err = mapTaskRepoError("update task", err)
		return
	}
	s.purgeSummaries()
	return
}

// DeleteTask removes a task by id.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("TaskService is nil")
	}
	if strings.TrimSpace(id) == "" {
		return missingIDError()
	}
	if s.tasks == nil {
		return fmt.Errorf("task repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteTask", "task_id", id)

	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		err = mapTaskRepoError("delete task", err)
		logger.ErrorContext(ctx, "failed to delete task", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	s.purgeSummaries()
	logger.InfoContext(ctx, "task deleted")
	return nil
}

func (s *TaskService) purgeSummaries() {
	if s.summaries != nil {
		s.summaries.Purge()
	}
}

// applyPatch builds the merged submission. A legacy start/end pair in the
// patch replaces the segments only when no segments were sent.
func applyPatch(existing Task, patch TaskPatch) worklog.Submission {
	submission := worklog.Submission{
		Date:        worklog.FormatDate(existing.Date),
		Description: existing.Description,
		Type:        string(existing.Type),
		Segments:    existing.Segments,
	}
	if patch.Date != nil {
		submission.Date = *patch.Date
	}
	if patch.Description != nil {
		submission.Description = *patch.Description
	}
	if patch.Type != nil {
		submission.Type = *patch.Type
	}
	switch {
	case patch.Segments != nil:
		submission.Segments = *patch.Segments
	case patch.StartTime != nil && patch.EndTime != nil:
		submission.Segments = nil
		submission.LegacyStart = *patch.StartTime
		submission.LegacyEnd = *patch.EndTime
	}
	return submission
}

func taskFromEntry(entry worklog.Entry) Task {
	return Task{
		Date:        entry.Date,
		Segments:    entry.Segments,
		Description: entry.Description,
		Type:        entry.Type,
		Duration:    entry.Duration,
		Month:       entry.Month,
		Year:        entry.Year,
	}
}

func missingIDError() *ValidationError {
	vErr := &ValidationError{Message: "Task ID is required"}
	vErr.add("id", "id is required")
	return vErr
}

// validationFromWorklog converts the worklog value-construction errors into
// a ValidationError. Other errors are returned unchanged.
func validationFromWorklog(err error) error {
	var segErr *worklog.SegmentError
	if errors.As(err, &segErr) {
		vErr := &ValidationError{Message: segErr.Message()}
		vErr.add("timeSegments", segErr.Message())
		return vErr
	}

	var fields worklog.FieldErrors
	if errors.As(err, &fields) {
		vErr := &ValidationError{Message: "Invalid task fields"}
		for field, message := range fields {
			vErr.add(field, message)
			if strings.HasSuffix(message, "is required") {
				vErr.Message = "Missing required fields"
			}
		}
		return vErr
	}

	return err
}

func mapTaskRepoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{Message: "Task violates storage constraints"}
		vErr.add("task", "task could not be stored")
		return vErr
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func filterAttrs(filter TaskFilter) []any {
	var attrs []any
	if filter.Month != nil {
		attrs = append(attrs, "month", *filter.Month)
	}
	if filter.Year != nil {
		attrs = append(attrs, "year", *filter.Year)
	}
	return attrs
}
