package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/internlog/internal/persistence"
)

// ProfileRepository captures the persistence operations needed by the service.
type ProfileRepository interface {
	GetProfile(ctx context.Context) (Profile, error)
	UpsertProfile(ctx context.Context, profile Profile) (Profile, bool, error)
}

// ProfileService maintains the single report profile.
type ProfileService struct {
	profiles    ProfileRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewProfileService constructs a profile service with the provided dependencies.
func NewProfileService(profiles ProfileRepository, idGenerator func() string, now func() time.Time) *ProfileService {
	return NewProfileServiceWithLogger(profiles, idGenerator, now, nil)
}

// NewProfileServiceWithLogger constructs a profile service with a specified logger.
func NewProfileServiceWithLogger(profiles ProfileRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProfileService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProfileService{profiles: profiles, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// GetProfile returns the stored profile. found is false when none was saved.
func (s *ProfileService) GetProfile(ctx context.Context) (profile Profile, found bool, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}
	if s.profiles == nil {
		return Profile{}, false, nil
	}

	profile, err = s.profiles.GetProfile(ctx)
	switch {
	case err == nil:
		return profile, true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return Profile{}, false, nil
	}

	err = mapProfileRepoError("get profile", err)
	s.loggerWith(ctx, "GetProfile").ErrorContext(ctx, "failed to load profile", "error", err, "error_kind", ErrorKind(err))
	return Profile{}, false, err
}

// SaveProfile updates the stored profile or creates it when none exists.
func (s *ProfileService) SaveProfile(ctx context.Context, input ProfileInput) (profile Profile, created bool, err error) {
	if s == nil {
		err = fmt.Errorf("ProfileService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveProfile")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("profile_id", profile.ID).InfoContext(ctx, "profile saved", "created", created)
	}()

	vErr := validateProfileInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now().UTC()
	profile = Profile{
		ID:           s.idGenerator(),
		StudentName:  strings.TrimSpace(input.StudentName),
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Designation:  strings.TrimSpace(input.Designation),
		ProjectTitle: normalizeTitle(input.ProjectTitle),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.profiles == nil {
		created = true
		return
	}

	profile, created, err = s.profiles.UpsertProfile(ctx, profile)
	if err != nil {
		err = mapProfileRepoError("save profile", err)
		return Profile{}, false, err
	}
	return
}

func validateProfileInput(input ProfileInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.StudentName) == "" {
		vErr.add("studentName", "student name is required")
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		vErr.add("companyName", "company name is required")
	}
	if strings.TrimSpace(input.Designation) == "" {
		vErr.add("designation", "designation is required")
	}
	if vErr.HasErrors() {
		vErr.Message = "Missing required fields"
	}
	return vErr
}

// normalizeTitle trims the title. An explicitly empty title clears it.
func normalizeTitle(title *string) *string {
	if title == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*title)
	return &trimmed
}

func mapProfileRepoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{Message: "Profile violates storage constraints"}
		vErr.add("profile", "profile could not be stored")
		return vErr
	}
	return &StorageError{Op: op, Err: err}
}
