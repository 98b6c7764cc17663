package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/internlog/internal/persistence"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

// TaskRepository implements persistence.TaskRepository using SQLite.
type TaskRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTaskRepository creates a SQLite task repository.
func NewTaskRepository(pool *ConnectionPool) *TaskRepository {
	return &TaskRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTask inserts a task and its segments in one transaction.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO tasks (id, task_date, description, type, duration, legacy_start, legacy_end, month, year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			task.ID,
			task.Date.Format(dateLayout),
			task.Description,
			task.Type,
			task.Duration,
			task.LegacyStart,
			task.LegacyEnd,
			task.Month,
			task.Year,
			formatTimestamp(task.CreatedAt),
			formatTimestamp(task.UpdatedAt),
		); err != nil {
			return err
		}
		return insertSegments(ctx, tx, task.ID, task.Segments)
	})
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateTask replaces every mutable column and the segment list. CreatedAt
// is never changed.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrNotFound
	}

	const query = `
		UPDATE tasks
		SET task_date = ?, description = ?, type = ?, duration = ?, legacy_start = ?, legacy_end = ?,
			month = ?, year = ?, updated_at = ?
		WHERE id = ?`

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			task.Date.Format(dateLayout),
			task.Description,
			task.Type,
			task.Duration,
			task.LegacyStart,
			task.LegacyEnd,
			task.Month,
			task.Year,
			formatTimestamp(task.UpdatedAt),
			task.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM task_segments WHERE task_id = ?`, task.ID); err != nil {
			return err
		}
		return insertSegments(ctx, tx, task.ID, task.Segments)
	})
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetTask retrieves a task by id.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if id == "" {
		return persistence.Task{}, persistence.ErrNotFound
	}

	tasks, err := r.queryTasks(ctx, "t.id = ?", []any{id})
	if err != nil {
		return persistence.Task{}, err
	}
	if len(tasks) == 0 {
		return persistence.Task{}, persistence.ErrNotFound
	}
	return tasks[0], nil
}

// ListTasks returns tasks matching filter ordered by date, creation time and id.
func (r *TaskRepository) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Month != nil {
		clauses = append(clauses, "t.month = ?")
		args = append(args, *filter.Month)
	}
	if filter.Year != nil {
		clauses = append(clauses, "t.year = ?")
		args = append(args, *filter.Year)
	}
	where := "1 = 1"
	if len(clauses) > 0 {
		where = strings.Join(clauses, " AND ")
	}
	return r.queryTasks(ctx, where, args)
}

// DeleteTask removes a task; its segments cascade.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, where string, args []any) ([]persistence.Task, error) {
	query := `
		SELECT t.id, t.task_date, t.description, t.type, t.duration, t.legacy_start, t.legacy_end,
			t.month, t.year, t.created_at, t.updated_at
		FROM tasks t
		WHERE ` + where + `
		ORDER BY t.task_date ASC, t.created_at ASC, t.id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var (
		tasks []persistence.Task
		index = make(map[string]int)
	)
	for rows.Next() {
		var (
			task                 persistence.Task
			date                 string
			createdAt, updatedAt string
		)
		if err := rows.Scan(
			&task.ID,
			&date,
			&task.Description,
			&task.Type,
			&task.Duration,
			&task.LegacyStart,
			&task.LegacyEnd,
			&task.Month,
			&task.Year,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if task.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse task_date: %w", err)
		}
		if task.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if task.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		index[task.ID] = len(tasks)
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	segmentQuery := `
		SELECT s.task_id, s.start_time, s.end_time
		FROM task_segments s
		JOIN tasks t ON t.id = s.task_id
		WHERE ` + where + `
		ORDER BY s.task_id ASC, s.position ASC`

	segRows, err := r.helper.Query(ctx, segmentQuery, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer segRows.Close()

	for segRows.Next() {
		var (
			taskID  string
			segment persistence.Segment
		)
		if err := segRows.Scan(&taskID, &segment.Start, &segment.End); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Segments = append(tasks[i].Segments, segment)
		}
	}
	if err := segRows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return tasks, nil
}

func insertSegments(ctx context.Context, tx *sql.Tx, taskID string, segments []persistence.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO task_segments (task_id, position, start_time, end_time)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, segment := range segments {
		if _, err := stmt.ExecContext(ctx, taskID, i, segment.Start, segment.End); err != nil {
			return err
		}
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		// Accept plain RFC 3339 values written by hand or by older tools.
		return time.Parse(time.RFC3339Nano, value)
	}
	return t, nil
}
