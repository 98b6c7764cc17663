package application

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/report"
)

// ReportOptions tunes report composition.
type ReportOptions struct {
	// PageSize is the number of task rows per page; zero means
	// report.TasksPerPage.
	PageSize int
	// Cache holds monthly summaries. Nil disables caching.
	Cache *SummaryCache
}

// ReportService builds monthly summaries, previews, and PDF exports from the
// stored tasks and profile.
type ReportService struct {
	tasks    TaskRepository
	profiles ProfileRepository
	renderer report.Renderer
	options  ReportOptions
	now      func() time.Time
	logger   *slog.Logger
}

// NewReportService constructs a report service with the provided dependencies.
func NewReportService(tasks TaskRepository, profiles ProfileRepository, renderer report.Renderer, options ReportOptions) *ReportService {
	return NewReportServiceWithLogger(tasks, profiles, renderer, options, nil, nil)
}

// NewReportServiceWithLogger constructs a report service with a specified logger.
func NewReportServiceWithLogger(tasks TaskRepository, profiles ProfileRepository, renderer report.Renderer, options ReportOptions, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	if options.PageSize <= 0 {
		options.PageSize = report.TasksPerPage
	}
	if renderer == nil {
		renderer = report.NewPDFRenderer(now)
	}
	return &ReportService{
		tasks:    tasks,
		profiles: profiles,
		renderer: renderer,
		options:  options,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// Summary returns the dashboard totals for a month.
func (s *ReportService) Summary(ctx context.Context, month, year int) (summary report.Summary, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if vErr := periodError(month, year); vErr != nil {
		err = vErr
		return
	}

	if cached, ok := s.options.Cache.Get(month, year); ok {
		return cached, nil
	}

	logger := s.loggerWith(ctx, "Summary", "month", month, "year", year)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to summarize month", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "month summarized", "tasks", summary.TotalTasks)
	}()

	var tasks []report.Task
	tasks, err = s.monthTasks(ctx, month, year)
	if err != nil {
		return
	}

	summary = report.Summarize(tasks)
	s.options.Cache.Store(month, year, summary)
	return
}

// Preview composes the report for draft without rendering it.
func (s *ReportService) Preview(ctx context.Context, draft report.Draft) (doc report.Document, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Preview", "month", draft.Month, "year", draft.Year)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compose report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "report composed", "pages", doc.PageCount())
	}()

	doc, err = s.compose(ctx, logger, draft)
	return
}

// Export composes and renders the report for draft. Nothing is returned
// unless every page rendered.
func (s *ReportService) Export(ctx context.Context, draft report.Draft) (result ExportResult, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Export", "month", draft.Month, "year", draft.Year)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "report exported", "file", result.FileName, "pages", result.Pages, "bytes", len(result.Content))
	}()

	var doc report.Document
	doc, err = s.compose(ctx, logger, draft)
	if err != nil {
		return
	}

	session := report.NewSession(s.renderer)
	session.OnTransition(func(from, to report.State) {
		logger.DebugContext(ctx, "report state changed", "from", from.String(), "to", to.String())
	})
	session.ShowPreview(doc)

	var buf bytes.Buffer
	if err = session.Export(ctx, &buf); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return
		}
		err = fmt.Errorf("%w: %w", ErrExportFailed, err)
		return
	}

	content := buf.Bytes()
	result = ExportResult{
		FileName: report.FileName(draft.Month, draft.Year),
		ETag:     contentETag(content),
		Pages:    doc.PageCount(),
		Content:  content,
	}
	return
}

func (s *ReportService) compose(ctx context.Context, logger *slog.Logger, draft report.Draft) (report.Document, error) {
	if vErr := periodError(draft.Month, draft.Year); vErr != nil {
		return report.Document{}, vErr
	}

	tasks, err := s.monthTasks(ctx, draft.Month, draft.Year)
	if err != nil {
		return report.Document{}, err
	}

	var profile report.Profile
	if s.profiles != nil {
		stored, perr := s.profiles.GetProfile(ctx)
		switch {
		case perr == nil:
			profile = reportProfile(stored)
		case errors.Is(perr, ErrNotFound), errors.Is(perr, persistence.ErrNotFound):
		default:
			logger.WarnContext(ctx, "composing report without profile", "error", perr)
		}
	}

	return report.Compose(profile, draft, tasks, s.options.PageSize), nil
}

func (s *ReportService) monthTasks(ctx context.Context, month, year int) ([]report.Task, error) {
	if s.tasks == nil {
		return nil, nil
	}
	stored, err := s.tasks.ListTasks(ctx, TaskFilter{Month: &month, Year: &year})
	if err != nil {
		return nil, mapTaskRepoError("list tasks", err)
	}
	tasks := make([]report.Task, 0, len(stored))
	for _, task := range stored {
		tasks = append(tasks, report.Task{
			ID:          task.ID,
			Date:        task.Date,
			Description: task.Description,
			Type:        task.Type,
			Duration:    task.Duration,
		})
	}
	return tasks, nil
}

func reportProfile(profile Profile) report.Profile {
	out := report.Profile{
		StudentName: profile.StudentName,
		CompanyName: profile.CompanyName,
		Designation: profile.Designation,
	}
	if profile.ProjectTitle != nil {
		out.ProjectTitle = *profile.ProjectTitle
	}
	return out
}

func periodError(month, year int) *ValidationError {
	if err := report.ValidatePeriod(month, year); err == nil {
		return nil
	}
	vErr := &ValidationError{Message: "Invalid month or year"}
	if month < 1 || month > 12 {
		vErr.add("month", "month must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		vErr.add("year", "year must be between 1 and 9999")
	}
	return vErr
}

// contentETag is a strong validator derived from the rendered bytes.
func contentETag(content []byte) string {
	sum := blake2b.Sum256(content)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
