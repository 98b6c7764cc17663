package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/worklog"
)

type taskService interface {
	ListTasks(ctx context.Context, filter application.TaskFilter) ([]application.Task, error)
	CreateTask(ctx context.Context, input application.TaskInput) (application.Task, error)
	UpdateTask(ctx context.Context, patch application.TaskPatch) (application.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type TaskHandler struct {
	service   taskService
	responder responder
	logger    *slog.Logger
}

func NewTaskHandler(service taskService, logger *slog.Logger) *TaskHandler {
	base := defaultLogger(logger)
	return &TaskHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TaskHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "TaskHandler", operation, attrs...)
}

// List answers an empty list instead of an error status so the dashboard
// keeps rendering when storage or the query is broken.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	filter, err := parseTaskFilter(r)
	if err != nil {
		logger.WarnContext(r.Context(), "ignoring malformed task filter", "error", err, "error_kind", "bad_request")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, []taskDTO{})
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "task list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.writeJSON(r.Context(), w, http.StatusOK, []taskDTO{})
		return
	}

	logger.With("result_count", len(tasks)).DebugContext(r.Context(), "tasks listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTaskDTOs(tasks))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode task request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	task, err := h.service.CreateTask(r.Context(), req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "task creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err, "Failed to create task")
		return
	}

	logger.With("task_id", task.ID).InfoContext(r.Context(), "task created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTaskDTO(task))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode task update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	patch := req.toPatch()
	if strings.TrimSpace(patch.ID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").WarnContext(r.Context(), "missing task id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTaskID)
		return
	}

	logger := h.log(r.Context(), "Update", "task_id", patch.ID)

	task, err := h.service.UpdateTask(r.Context(), patch)
	if err != nil {
		logger.ErrorContext(r.Context(), "task update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err, "Failed to update task")
		return
	}

	logger.InfoContext(r.Context(), "task updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTaskDTO(task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").WarnContext(r.Context(), "missing task id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingTaskID)
		return
	}

	logger := h.log(r.Context(), "Delete", "task_id", id)
	if err := h.service.DeleteTask(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "task delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err, "Failed to delete task")
		return
	}

	logger.InfoContext(r.Context(), "task deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, messageResponse{Message: "Task deleted"})
}

func parseTaskFilter(r *http.Request) (application.TaskFilter, error) {
	var filter application.TaskFilter
	query := r.URL.Query()
	if value := strings.TrimSpace(query.Get("month")); value != "" {
		month, err := strconv.Atoi(value)
		if err != nil {
			return application.TaskFilter{}, err
		}
		filter.Month = &month
	}
	if value := strings.TrimSpace(query.Get("year")); value != "" {
		year, err := strconv.Atoi(value)
		if err != nil {
			return application.TaskFilter{}, err
		}
		filter.Year = &year
	}
	return filter, nil
}

type segmentDTO struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// taskRequest serves both create and update. Pointer fields distinguish an
// omitted field from an empty one on update. Client supplied month and year
// are ignored.
type taskRequest struct {
	ID           string        `json:"id"`
	LegacyID     string        `json:"_id"`
	Date         *string       `json:"date"`
	Description  *string       `json:"description"`
	Type         *string       `json:"type"`
	TimeSegments *[]segmentDTO `json:"timeSegments"`
	StartTime    *string       `json:"startTime"`
	EndTime      *string       `json:"endTime"`
}

func (r taskRequest) toInput() application.TaskInput {
	input := application.TaskInput{
		Date:        deref(r.Date),
		Description: deref(r.Description),
		Type:        deref(r.Type),
		StartTime:   deref(r.StartTime),
		EndTime:     deref(r.EndTime),
	}
	if r.TimeSegments != nil {
		input.Segments = toSegments(*r.TimeSegments)
	}
	return input
}

func (r taskRequest) toPatch() application.TaskPatch {
	id := r.ID
	if strings.TrimSpace(id) == "" {
		id = r.LegacyID
	}
	patch := application.TaskPatch{
		ID:          strings.TrimSpace(id),
		Date:        r.Date,
		Description: r.Description,
		Type:        r.Type,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
	}
	if r.TimeSegments != nil {
		segments := toSegments(*r.TimeSegments)
		patch.Segments = &segments
	}
	return patch
}

func toSegments(dtos []segmentDTO) []worklog.TimeSegment {
	segments := make([]worklog.TimeSegment, 0, len(dtos))
	for _, dto := range dtos {
		segments = append(segments, worklog.TimeSegment{Start: dto.StartTime, End: dto.EndTime})
	}
	return segments
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// taskDTO mirrors the stored document; _id duplicates id for older clients.
type taskDTO struct {
	ID           string       `json:"id"`
	LegacyID     string       `json:"_id"`
	Date         string       `json:"date"`
	TimeSegments []segmentDTO `json:"timeSegments"`
	Description  string       `json:"description"`
	Type         string       `json:"type"`
	Duration     string       `json:"duration"`
	Month        int          `json:"month"`
	Year         int          `json:"year"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

func toTaskDTO(task application.Task) taskDTO {
	segments := make([]segmentDTO, 0, len(task.Segments))
	for _, segment := range task.Segments {
		segments = append(segments, segmentDTO{StartTime: segment.Start, EndTime: segment.End})
	}
	return taskDTO{
		ID:           task.ID,
		LegacyID:     task.ID,
		Date:         task.Date.UTC().Format(time.RFC3339),
		TimeSegments: segments,
		Description:  task.Description,
		Type:         string(task.Type),
		Duration:     task.Duration,
		Month:        task.Month,
		Year:         task.Year,
		CreatedAt:    task.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTaskDTOs(tasks []application.Task) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskDTO(task))
	}
	return out
}
