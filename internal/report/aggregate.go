package report

import "github.com/example/internlog/internal/worklog"

// Paginate splits tasks into consecutive pages of at most pageSize rows,
// preserving order. A non-positive pageSize uses TasksPerPage. No tasks
// yield no pages.
func Paginate(tasks []Task, pageSize int) [][]Task {
	if pageSize <= 0 {
		pageSize = TasksPerPage
	}
	if len(tasks) == 0 {
		return nil
	}
	pages := make([][]Task, 0, (len(tasks)+pageSize-1)/pageSize)
	for start := 0; start < len(tasks); start += pageSize {
		end := start + pageSize
		if end > len(tasks) {
			end = len(tasks)
		}
		pages = append(pages, tasks[start:end:end])
	}
	return pages
}

// Summary aggregates a month of tasks.
type Summary struct {
	TotalTasks       int
	WorkDays         int
	TotalWorkMinutes int
	HolidayCount     int
	WeekendCount     int
}

// TotalWorkDuration renders TotalWorkMinutes as "{h}h {m}m".
func (s Summary) TotalWorkDuration() string {
	return worklog.FormatDuration(s.TotalWorkMinutes)
}

// DaysOff counts holidays and weekends together.
func (s Summary) DaysOff() int {
	return s.HolidayCount + s.WeekendCount
}

// Summarize counts tasks by type and totals Work durations. Durations are
// read back from the stored display string; unparsable values add nothing.
func Summarize(tasks []Task) Summary {
	summary := Summary{TotalTasks: len(tasks)}
	for _, task := range tasks {
		switch task.Type {
		case worklog.TypeWork:
			summary.WorkDays++
			if minutes, ok := worklog.ParseDuration(task.Duration); ok {
				summary.TotalWorkMinutes += minutes
			}
		case worklog.TypeHoliday:
			summary.HolidayCount++
		case worklog.TypeWeekend:
			summary.WeekendCount++
		}
	}
	return summary
}
