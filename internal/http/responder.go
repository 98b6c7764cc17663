package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/internlog/internal/application"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequestBody = errors.New("Invalid request body")
	errMissingTaskID  = errors.New("Task ID is required")
	errInvalidPeriod  = errors.New("Valid month and year are required")
)

const storageUnavailableMessage = "Storage is unavailable. Check the storage driver settings (INTERNLOG_STORAGE_DRIVER, INTERNLOG_SQLITE_PATH or INTERNLOG_MONGO_URI)."

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application errors to status codes. fallback is
// the message for generic storage failures; raw error text is only logged.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	var sErr *application.StorageError
	switch {
	case errors.As(err, &vErr):
		message := vErr.Message
		if message == "" {
			message = "Invalid request"
		}
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: message, Errors: vErr.FieldErrors})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Not found"})
	case errors.As(err, &sErr) && sErr.IsUnavailable():
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: storageUnavailableMessage})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Message: "Request cancelled"})
	default:
		if fallback == "" {
			fallback = http.StatusText(http.StatusInternalServerError)
		}
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: fallback})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

type errorResponse struct {
	Message string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}
