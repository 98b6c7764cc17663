package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenDatabase(context.Background(), InMemoryTestSQLiteConfig())
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestManager_RunMigrations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/001_items.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"sql/002_names.sql": {Data: []byte("ALTER TABLE items ADD COLUMN name TEXT NOT NULL DEFAULT '';\nCREATE INDEX idx_items_name ON items(name);")},
	}
	manager := NewManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "sql", quietLogger())

	applied, err := manager.RunMigrations(ctx)
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 migrations applied, got %d", applied)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO items (id, name) VALUES ('a', 'first')`); err != nil {
		t.Fatalf("schema not applied: %v", err)
	}

	applied, err = manager.RunMigrations(ctx)
	if err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
	if applied != 0 {
		t.Fatalf("expected no migrations on second run, got %d", applied)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" || status.PendingCount != 0 || len(status.AppliedMigrations) != 2 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestManager_RollsBackFailedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/001_items.sql":  {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")},
		"sql/002_broken.sql": {Data: []byte("CREATE TABLE extra (id TEXT);\nINSERT INTO missing_table VALUES (1);")},
	}
	manager := NewManager(NewFileScanner(), NewSQLiteExecutor(db), fsys, "sql", quietLogger())

	applied, err := manager.RunMigrations(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected first migration to be applied, got %d", applied)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'extra'`).Scan(&count); err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Fatal("expected failed migration to be rolled back")
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "001" || status.PendingCount != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestManager_DetectsEditedMigration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	original := fstest.MapFS{"sql/001_items.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY);")}}
	if _, err := NewManager(NewFileScanner(), NewSQLiteExecutor(db), original, "sql", quietLogger()).RunMigrations(ctx); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	edited := fstest.MapFS{"sql/001_items.sql": {Data: []byte("CREATE TABLE items (id TEXT PRIMARY KEY, extra TEXT);")}}
	_, err := NewManager(NewFileScanner(), NewSQLiteExecutor(db), edited, "sql", quietLogger()).PendingMigrations(ctx)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestSQLiteConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultSQLiteConfig("data/internlog.db").Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	invalid := []SQLiteConfig{
		{},
		{Path: "x.db", JournalMode: "SOMETIMES"},
		{Path: "x.db", Synchronous: "MAYBE"},
		{Path: "x.db", MaxOpenConns: -1},
	}
	for _, config := range invalid {
		if err := config.Validate(); err == nil {
			t.Fatalf("expected %+v to be rejected", config)
		}
	}
}
