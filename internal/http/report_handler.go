package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/report"
)

type reportService interface {
	Summary(ctx context.Context, month, year int) (report.Summary, error)
	Preview(ctx context.Context, draft report.Draft) (report.Document, error)
	Export(ctx context.Context, draft report.Draft) (application.ExportResult, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	month, year, ok := parsePeriod(r)
	if !ok {
		h.log(r.Context(), "Summary", "error_kind", "bad_request").WarnContext(r.Context(), "invalid summary period", "query", r.URL.RawQuery)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPeriod)
		return
	}

	logger := h.log(r.Context(), "Summary", "month", month, "year", year)

	summary, err := h.service.Summary(r.Context(), month, year)
	if err != nil {
		logger.ErrorContext(r.Context(), "summary failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err, "Failed to load summary")
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSummaryDTO(month, year, summary))
}

func (h *ReportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Preview", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode report draft", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Preview", "month", req.Month, "year", req.Year)

	doc, err := h.service.Preview(r.Context(), req.toDraft())
	if err != nil {
		logger.ErrorContext(r.Context(), "report preview failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err, "Failed to compose report")
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDocumentDTO(doc))
}

func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req draftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Export", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode report draft", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Export", "month", req.Month, "year", req.Year)

	result, err := h.service.Export(r.Context(), req.toDraft())
	if err != nil {
		logger.ErrorContext(r.Context(), "report export failed", "error", err, "error_kind", application.ErrorKind(err))
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			h.responder.handleServiceError(r.Context(), w, err, "")
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "Failed to generate PDF"})
		return
	}

	w.Header().Set("ETag", result.ETag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == result.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Content); err != nil {
		logger.WarnContext(r.Context(), "failed to stream report", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "report streamed", "file", result.FileName, "pages", result.Pages)
}

func parsePeriod(r *http.Request) (month, year int, ok bool) {
	query := r.URL.Query()
	month, err := strconv.Atoi(strings.TrimSpace(query.Get("month")))
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(strings.TrimSpace(query.Get("year")))
	if err != nil {
		return 0, 0, false
	}
	if report.ValidatePeriod(month, year) != nil {
		return 0, 0, false
	}
	return month, year, true
}

type draftRequest struct {
	Month             int      `json:"month"`
	Year              int      `json:"year"`
	Objectives        string   `json:"objectives"`
	Summary           string   `json:"summary"`
	LearningOutcomes  []string `json:"learningOutcomes"`
	ToolsTechnologies []string `json:"toolsTechnologies"`
}

func (r draftRequest) toDraft() report.Draft {
	return report.Draft{
		Month:             r.Month,
		Year:              r.Year,
		Objectives:        r.Objectives,
		Summary:           r.Summary,
		LearningOutcomes:  r.LearningOutcomes,
		ToolsTechnologies: r.ToolsTechnologies,
	}
}

type summaryDTO struct {
	Month            int    `json:"month"`
	Year             int    `json:"year"`
	TotalTasks       int    `json:"totalTasks"`
	WorkDays         int    `json:"workDays"`
	TotalHours       string `json:"totalHours"`
	TotalWorkMinutes int    `json:"totalWorkMinutes"`
	DaysOff          int    `json:"daysOff"`
	Holidays         int    `json:"holidays"`
	Weekends         int    `json:"weekends"`
}

func toSummaryDTO(month, year int, summary report.Summary) summaryDTO {
	return summaryDTO{
		Month:            month,
		Year:             year,
		TotalTasks:       summary.TotalTasks,
		WorkDays:         summary.WorkDays,
		TotalHours:       summary.TotalWorkDuration(),
		TotalWorkMinutes: summary.TotalWorkMinutes,
		DaysOff:          summary.DaysOff(),
		Holidays:         summary.HolidayCount,
		Weekends:         summary.WeekendCount,
	}
}

type fieldDTO struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type sectionDTO struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type listSectionDTO struct {
	Title    string   `json:"title"`
	Items    []string `json:"items"`
	Fallback string   `json:"fallback,omitempty"`
}

type coverDTO struct {
	Title        string           `json:"title"`
	Subtitle     string           `json:"subtitle"`
	Fields       []fieldDTO       `json:"fields"`
	Sections     []sectionDTO     `json:"sections"`
	ListSections []listSectionDTO `json:"listSections"`
	Signature    string           `json:"signature"`
}

type rowDTO struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

type taskPageDTO struct {
	Number  int      `json:"number"`
	Heading string   `json:"heading"`
	Rows    []rowDTO `json:"rows"`
}

type documentDTO struct {
	Month     int           `json:"month"`
	Year      int           `json:"year"`
	Pages     int           `json:"pages"`
	Cover     coverDTO      `json:"cover"`
	TaskPages []taskPageDTO `json:"taskPages"`
	Summary   summaryDTO    `json:"summary"`
}

func toDocumentDTO(doc report.Document) documentDTO {
	cover := coverDTO{
		Title:        doc.Cover.Title,
		Subtitle:     doc.Cover.Subtitle,
		Fields:       make([]fieldDTO, 0, len(doc.Cover.Fields)),
		Sections:     make([]sectionDTO, 0, len(doc.Cover.Sections)),
		ListSections: make([]listSectionDTO, 0, len(doc.Cover.ListSections)),
		Signature:    doc.Cover.Signature,
	}
	for _, field := range doc.Cover.Fields {
		cover.Fields = append(cover.Fields, fieldDTO{Label: field.Label, Value: field.Value})
	}
	for _, section := range doc.Cover.Sections {
		cover.Sections = append(cover.Sections, sectionDTO{Title: section.Title, Body: section.Body})
	}
	for _, list := range doc.Cover.ListSections {
		items := list.Items
		if items == nil {
			items = []string{}
		}
		cover.ListSections = append(cover.ListSections, listSectionDTO{Title: list.Title, Items: items, Fallback: list.Fallback})
	}

	pages := make([]taskPageDTO, 0, len(doc.TaskPages))
	for _, page := range doc.TaskPages {
		rows := make([]rowDTO, 0, len(page.Rows))
		for _, row := range page.Rows {
			rows = append(rows, rowDTO{Date: row.Date, Description: row.Description, Duration: row.Duration})
		}
		pages = append(pages, taskPageDTO{Number: page.Number, Heading: page.Heading, Rows: rows})
	}

	return documentDTO{
		Month:     doc.Month,
		Year:      doc.Year,
		Pages:     doc.PageCount(),
		Cover:     cover,
		TaskPages: pages,
		Summary:   toSummaryDTO(doc.Month, doc.Year, doc.Summary),
	}
}
