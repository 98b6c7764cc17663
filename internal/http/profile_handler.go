package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/internlog/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context) (application.Profile, bool, error)
	SaveProfile(ctx context.Context, input application.ProfileInput) (application.Profile, bool, error)
}

type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

// Get answers null both when no profile exists and when it cannot be read.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Get")

	profile, found, err := h.service.GetProfile(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "profile lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.writeJSON(r.Context(), w, http.StatusOK, nil)
		return
	}
	if !found {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, nil)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toProfileDTO(profile))
}

func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Save", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode profile request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Save")

	profile, created, err := h.service.SaveProfile(r.Context(), application.ProfileInput{
		StudentName:  req.StudentName,
		CompanyName:  req.CompanyName,
		Designation:  req.Designation,
		ProjectTitle: req.ProjectTitle,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "profile save failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err, "Failed to save profile")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	logger.With("profile_id", profile.ID).InfoContext(r.Context(), "profile saved", "created", created)
	h.responder.writeJSON(r.Context(), w, status, toProfileDTO(profile))
}

type profileRequest struct {
	StudentName  string  `json:"studentName"`
	CompanyName  string  `json:"companyName"`
	Designation  string  `json:"designation"`
	ProjectTitle *string `json:"projectTitle"`
}

type profileDTO struct {
	ID           string  `json:"id"`
	LegacyID     string  `json:"_id"`
	StudentName  string  `json:"studentName"`
	CompanyName  string  `json:"companyName"`
	Designation  string  `json:"designation"`
	ProjectTitle *string `json:"projectTitle,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toProfileDTO(profile application.Profile) profileDTO {
	return profileDTO{
		ID:           profile.ID,
		LegacyID:     profile.ID,
		StudentName:  profile.StudentName,
		CompanyName:  profile.CompanyName,
		Designation:  profile.Designation,
		ProjectTitle: profile.ProjectTitle,
		CreatedAt:    profile.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    profile.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
