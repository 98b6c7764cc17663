package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/persistence/sqlite"
	"github.com/example/internlog/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated SQLite store in a temporary file.
type SQLiteHarness struct {
	Storage  *sqlite.Storage
	Tasks    persistence.TaskRepository
	Profiles persistence.ProfileRepository
}

// NewSQLiteHarness opens and migrates a fresh database. It is closed when
// the test finishes.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	path := filepath.Join(tb.TempDir(), "internlog.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	storage, err := sqlite.Open(ctx, migration.TempFileTestSQLiteConfig(path), logger)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() {
		_ = storage.Close()
	})

	if err := storage.Migrate(ctx); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{Storage: storage, Tasks: storage, Profiles: storage}
}

// SeedTasks stores each fixture, failing the test on error.
func (h *SQLiteHarness) SeedTasks(tb testing.TB, fixtures ...TaskFixture) {
	tb.Helper()
	for _, fixture := range fixtures {
		if err := h.Tasks.CreateTask(context.Background(), fixture.Persistence()); err != nil {
			tb.Fatalf("seed task %s: %v", fixture.ID, err)
		}
	}
}
