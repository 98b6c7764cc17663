package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/internlog/internal/persistence"
)

// ProfileRepository implements persistence.ProfileRepository using SQLite.
type ProfileRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProfileRepository creates a SQLite profile repository.
func NewProfileRepository(pool *ConnectionPool) *ProfileRepository {
	return &ProfileRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const selectProfile = `
	SELECT id, student_name, company_name, designation, project_title, created_at, updated_at
	FROM profiles
	ORDER BY updated_at DESC, id DESC
	LIMIT 1`

// GetProfile returns the most recently updated profile.
func (r *ProfileRepository) GetProfile(ctx context.Context) (persistence.Profile, error) {
	profile, err := scanProfile(r.helper.QueryRow(ctx, selectProfile))
	if err != nil {
		return persistence.Profile{}, r.mapper.MapError(err)
	}
	return profile, nil
}

// UpsertProfile updates the current profile in place or inserts the first one.
// A nil ProjectTitle keeps the stored title.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile persistence.Profile) (persistence.Profile, bool, error) {
	var (
		stored  persistence.Profile
		created bool
	)
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		existing, err := scanProfile(tx.QueryRowContext(ctx, selectProfile))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if profile.ID == "" {
				return persistence.ErrConstraintViolation
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO profiles (id, student_name, company_name, designation, project_title, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				profile.ID,
				profile.StudentName,
				profile.CompanyName,
				profile.Designation,
				nullableString(profile.ProjectTitle),
				formatTimestamp(profile.CreatedAt),
				formatTimestamp(profile.UpdatedAt),
			); err != nil {
				return err
			}
			stored = persistence.CloneProfile(profile)
			created = true
			return nil
		case err != nil:
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles
			SET student_name = ?, company_name = ?, designation = ?, project_title = COALESCE(?, project_title), updated_at = ?
			WHERE id = ?`,
			profile.StudentName,
			profile.CompanyName,
			profile.Designation,
			nullableString(profile.ProjectTitle),
			formatTimestamp(profile.UpdatedAt),
			existing.ID,
		); err != nil {
			return err
		}
		stored = persistence.CloneProfile(profile)
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		if stored.ProjectTitle == nil {
			stored.ProjectTitle = existing.ProjectTitle
		}
		return nil
	})
	if err != nil {
		return persistence.Profile{}, false, r.mapper.MapError(err)
	}
	return stored, created, nil
}

func scanProfile(row *sql.Row) (persistence.Profile, error) {
	var (
		profile              persistence.Profile
		projectTitle         sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&profile.ID,
		&profile.StudentName,
		&profile.CompanyName,
		&profile.Designation,
		&projectTitle,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Profile{}, err
	}
	if projectTitle.Valid {
		title := projectTitle.String
		profile.ProjectTitle = &title
	}

	var err error
	if profile.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Profile{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if profile.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Profile{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return profile, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
