package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/testfixtures"
	"github.com/example/internlog/internal/worklog"
)

func TestTaskRepositoryAdapterReadsLegacyRecords(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	legacy := testfixtures.NewTaskFixture(testfixtures.WithTaskID("legacy-1")).Persistence()
	legacy.Segments = nil
	legacy.LegacyStart = "09:00"
	legacy.LegacyEnd = "17:00"
	if err := harness.Tasks.CreateTask(ctx, legacy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adapter := newTaskRepositoryAdapter(harness.Tasks)
	task, err := adapter.GetTask(ctx, "legacy-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(task.Segments) != 1 || task.Segments[0] != (worklog.TimeSegment{Start: "09:00", End: "17:00"}) {
		t.Fatalf("expected legacy pair as one segment, got %+v", task.Segments)
	}
	if task.Type != worklog.TypeWork {
		t.Fatalf("unexpected type %q", task.Type)
	}
}

func TestTaskRepositoryAdapterRoundTrip(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	adapter := newTaskRepositoryAdapter(harness.Tasks)

	fixture := testfixtures.NewTaskFixture(testfixtures.WithTaskSegments("08:30", "12:30", "13:00", "17:00"))
	created, err := adapter.CreateTask(ctx, fixture.Application())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created.Segments) != 2 || created.Duration != "8h 0m" {
		t.Fatalf("unexpected stored task %+v", created)
	}

	created.Description = "Reviewed the export code"
	updated, err := adapter.UpdateTask(ctx, created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Description != "Reviewed the export code" {
		t.Fatalf("update not persisted: %+v", updated)
	}

	month, year := 3, 2024
	tasks, err := adapter.ListTasks(ctx, application.TaskFilter{Month: &month, Year: &year})
	if err != nil || len(tasks) != 1 {
		t.Fatalf("unexpected list result %v, %v", tasks, err)
	}

	if err := adapter.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := adapter.GetTask(ctx, created.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileRepositoryAdapter(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	adapter := newProfileRepositoryAdapter(harness.Profiles)

	fixture := testfixtures.NewProfileFixture()
	stored, created, err := adapter.UpsertProfile(ctx, fixture.Application())
	if err != nil || !created {
		t.Fatalf("expected create, got created=%v err=%v", created, err)
	}

	second := testfixtures.NewProfileFixture(testfixtures.WithStudentName("Asha V."), testfixtures.WithProjectTitle(nil)).Application()
	second.ID = "ignored"
	updated, created, err := adapter.UpsertProfile(ctx, second)
	if err != nil || created {
		t.Fatalf("expected update, got created=%v err=%v", created, err)
	}
	if updated.ID != stored.ID || updated.StudentName != "Asha V." {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if updated.ProjectTitle == nil || *updated.ProjectTitle != *fixture.ProjectTitle {
		t.Fatalf("nil title should keep the stored one, got %v", updated.ProjectTitle)
	}
}

func TestParseSegments(t *testing.T) {
	segments, err := parseSegments([]string{"09:00-13:00", " 14:00 - 18:00 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 || segments[1] != (worklog.TimeSegment{Start: "14:00", End: "18:00"}) {
		t.Fatalf("unexpected segments %+v", segments)
	}
	if _, err := parseSegments([]string{"0900"}); err == nil {
		t.Fatal("expected error for malformed segment")
	}
}

func TestDescribeError(t *testing.T) {
	err := describeError(&application.ValidationError{
		Message:     "Missing required fields",
		FieldErrors: map[string]string{"description": "description is required", "date": "date is required"},
	})
	want := "Missing required fields (date: date is required; description: description is required)"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}

	plain := errors.New("boom")
	if describeError(plain) != plain {
		t.Fatal("non-validation errors should pass through")
	}
}

var cliEnvKeys = []string{
	"INTERNLOG_CONFIG",
	"INTERNLOG_STORAGE_DRIVER",
	"INTERNLOG_SQLITE_PATH",
	"INTERNLOG_MONGO_URI",
	"MONGODB_URI",
	"INTERNLOG_LOG_LEVEL",
	"INTERNLOG_LOG_FORMAT",
	"INTERNLOG_REPORT_PAGE_SIZE",
}

func writeCLIConfig(t *testing.T, dir string) string {
	t.Helper()
	for _, key := range cliEnvKeys {
		t.Setenv(key, "")
	}
	path := filepath.Join(dir, "internlog.toml")
	content := "[storage]\ndriver = \"sqlite\"\nsqlite_path = '" + filepath.Join(dir, "internlog.db") + "'\n\n[log]\nlevel = \"error\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	app := newApp()
	app.now = func() time.Time { return time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC) }

	var out, errOut bytes.Buffer
	app.root.SetOut(&out)
	app.root.SetErr(&errOut)
	app.root.SetArgs(append([]string{"--config", configPath}, args...))

	err := app.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIWorkflow(t *testing.T) {
	dir := t.TempDir()
	configPath := writeCLIConfig(t, dir)

	out, err := runCLI(t, configPath, "version")
	if err != nil || !strings.Contains(out, "internlog dev") {
		t.Fatalf("version: %q, %v", out, err)
	}

	out, err = runCLI(t, configPath, "tasks", "add", "--date", "2024-03-04", "--description", "Set up CI", "--type", "Work",
		"--segment", "09:00-13:00", "--segment", "14:00-18:00")
	if err != nil || !strings.Contains(out, "Added") {
		t.Fatalf("tasks add: %q, %v", out, err)
	}

	_, err = runCLI(t, configPath, "tasks", "add", "--date", "2024-03-05", "--description", "Short day", "--type", "Work",
		"--segment", "09:00-10:00")
	if err == nil || !strings.Contains(err.Error(), "Minimum required: 7h 40m") {
		t.Fatalf("expected minimum duration error, got %v", err)
	}

	if _, err = runCLI(t, configPath, "tasks", "add", "--date", "2024-03-09", "--description", "Saturday"); err != nil {
		t.Fatalf("tasks add weekend: %v", err)
	}

	out, err = runCLI(t, configPath, "tasks", "list", "--month", "3", "--year", "2024")
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	for _, want := range []string{"2024-03-04", "8h 0m", "Set up CI", "2024-03-09"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in task list:\n%s", want, out)
		}
	}

	out, err = runCLI(t, configPath, "summary")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, "March 2024") || !strings.Contains(out, "8h 0m") {
		t.Fatalf("unexpected summary:\n%s", out)
	}

	out, err = runCLI(t, configPath, "report", "--preview")
	if err != nil || !strings.Contains(out, "2 pages") {
		t.Fatalf("report preview: %q, %v", out, err)
	}

	draftPath := filepath.Join(dir, "march.toml")
	draft := "objectives = \"Ship the work log\"\nlearning_outcomes = [\"Go\", \"\"]\n"
	if err := os.WriteFile(draftPath, []byte(draft), 0o600); err != nil {
		t.Fatalf("write draft: %v", err)
	}
	reportsDir := filepath.Join(dir, "reports")
	if _, err = runCLI(t, configPath, "report", "--draft", draftPath, "--out", reportsDir); err != nil {
		t.Fatalf("report: %v", err)
	}
	pdf, err := os.ReadFile(filepath.Join(reportsDir, "internship_report_March_2024.pdf"))
	if err != nil {
		t.Fatalf("expected exported report: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("exported file is not a PDF")
	}

	out, err = runCLI(t, configPath, "migrate", "status")
	if err != nil || !strings.Contains(out, "0 pending") {
		t.Fatalf("migrate status: %q, %v", out, err)
	}
}

func TestCLIRejectsBadPeriod(t *testing.T) {
	configPath := writeCLIConfig(t, t.TempDir())

	if _, err := runCLI(t, configPath, "summary", "--month", "13"); err == nil {
		t.Fatal("expected error for month 13")
	}
}

func TestCLIReportsConfigErrors(t *testing.T) {
	configPath := writeCLIConfig(t, t.TempDir())
	t.Setenv("INTERNLOG_STORAGE_DRIVER", "mongo")

	_, err := runCLI(t, configPath, "tasks", "list")
	if err == nil || !strings.Contains(err.Error(), "INTERNLOG_MONGO_URI") {
		t.Fatalf("expected missing mongo uri error, got %v", err)
	}
}
