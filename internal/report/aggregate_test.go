package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/internlog/internal/worklog"
)

func TestPaginate(t *testing.T) {
	t.Parallel()

	t.Run("no tasks yield no pages", func(t *testing.T) {
		t.Parallel()
		if pages := Paginate(nil, TasksPerPage); pages != nil {
			t.Fatalf("expected nil pages, got %v", pages)
		}
		if pages := Paginate([]Task{}, TasksPerPage); len(pages) != 0 {
			t.Fatalf("expected no pages, got %d", len(pages))
		}
	})

	t.Run("splits thirty seven tasks into eighteen eighteen one", func(t *testing.T) {
		t.Parallel()
		tasks := makeTasks(37)
		pages := Paginate(tasks, 18)
		sizes := make([]int, len(pages))
		for i, page := range pages {
			sizes[i] = len(page)
		}
		if fmt.Sprint(sizes) != "[18 18 1]" {
			t.Fatalf("unexpected page sizes %v", sizes)
		}
		if pages[2][0].ID != tasks[36].ID {
			t.Fatalf("expected last task on the last page, got %s", pages[2][0].ID)
		}
	})

	t.Run("exact multiple has no empty trailing page", func(t *testing.T) {
		t.Parallel()
		if pages := Paginate(makeTasks(36), 18); len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
	})

	t.Run("concatenation preserves order", func(t *testing.T) {
		t.Parallel()
		for n := 1; n <= 60; n++ {
			tasks := makeTasks(n)
			var flat []Task
			pages := Paginate(tasks, 7)
			for i, page := range pages {
				if len(page) == 0 || len(page) > 7 {
					t.Fatalf("n=%d page %d has %d rows", n, i, len(page))
				}
				flat = append(flat, page...)
			}
			if len(flat) != n {
				t.Fatalf("n=%d flattened to %d", n, len(flat))
			}
			for i := range flat {
				if flat[i].ID != tasks[i].ID {
					t.Fatalf("n=%d order changed at %d", n, i)
				}
			}
		}
	})

	t.Run("non positive page size falls back", func(t *testing.T) {
		t.Parallel()
		if pages := Paginate(makeTasks(19), 0); len(pages) != 2 || len(pages[0]) != TasksPerPage {
			t.Fatalf("expected default page size, got %d pages", len(pages))
		}
	})

	t.Run("appending to a page does not clobber the next", func(t *testing.T) {
		t.Parallel()
		tasks := makeTasks(4)
		pages := Paginate(tasks, 2)
		_ = append(pages[0], Task{ID: "extra"})
		if tasks[2].ID != "task-03" {
			t.Fatalf("append leaked into backing array: %s", tasks[2].ID)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{Type: worklog.TypeWork, Duration: "8h 0m"},
		{Type: worklog.TypeWork, Duration: "7h 45m"},
		{Type: worklog.TypeWork, Duration: "broken"},
		{Type: worklog.TypeHoliday, Duration: "Holiday"},
		{Type: worklog.TypeWeekend, Duration: "Weekend"},
		{Type: worklog.TypeWeekend, Duration: "Weekend"},
	}
	got := Summarize(tasks)
	want := Summary{TotalTasks: 6, WorkDays: 3, TotalWorkMinutes: 945, HolidayCount: 1, WeekendCount: 2}
	if got != want {
		t.Fatalf("Summarize() = %+v, want %+v", got, want)
	}
	if got.TotalWorkDuration() != "15h 45m" {
		t.Fatalf("unexpected total duration %q", got.TotalWorkDuration())
	}
	if got.DaysOff() != 3 {
		t.Fatalf("expected 3 days off, got %d", got.DaysOff())
	}
	if empty := Summarize(nil); empty != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func makeTasks(n int) []Task {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			ID:          fmt.Sprintf("task-%02d", i+1),
			Date:        start.AddDate(0, 0, i),
			Description: fmt.Sprintf("Task %d", i+1),
			Type:        worklog.TypeWork,
			Duration:    "8h 0m",
		}
	}
	return tasks
}
