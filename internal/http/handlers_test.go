package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/internlog/internal/application"
	"github.com/example/internlog/internal/persistence"
	"github.com/example/internlog/internal/report"
	"github.com/example/internlog/internal/worklog"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type taskServiceStub struct {
	tasks      []application.Task
	listErr    error
	lastFilter application.TaskFilter
	lastInput  application.TaskInput
	lastPatch  application.TaskPatch
	deletedID  string
	err        error
}

func (s *taskServiceStub) ListTasks(_ context.Context, filter application.TaskFilter) ([]application.Task, error) {
	s.lastFilter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tasks, nil
}

func (s *taskServiceStub) CreateTask(_ context.Context, input application.TaskInput) (application.Task, error) {
	s.lastInput = input
	if s.err != nil {
		return application.Task{}, s.err
	}
	return sampleTask(), nil
}

func (s *taskServiceStub) UpdateTask(_ context.Context, patch application.TaskPatch) (application.Task, error) {
	s.lastPatch = patch
	if s.err != nil {
		return application.Task{}, s.err
	}
	return sampleTask(), nil
}

func (s *taskServiceStub) DeleteTask(_ context.Context, id string) error {
	s.deletedID = id
	return s.err
}

func sampleTask() application.Task {
	stamp := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	return application.Task{
		ID:          "task-1",
		Date:        time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		Segments:    []worklog.TimeSegment{{Start: "09:00", End: "17:00"}},
		Description: "Wrote migration tests",
		Type:        worklog.TypeWork,
		Duration:    "8h 0m",
		Month:       3,
		Year:        2024,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestTaskHandlers(t *testing.T) {
	t.Parallel()

	t.Run("list passes month and year through", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{tasks: []application.Task{sampleTask()}}
		router := NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())})

		rec := serve(router, http.MethodGet, "/tasks?month=3&year=2024", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastFilter.Month == nil || *stub.lastFilter.Month != 3 || stub.lastFilter.Year == nil || *stub.lastFilter.Year != 2024 {
			t.Fatalf("unexpected filter %+v", stub.lastFilter)
		}

		var got []map[string]any
		decodeBody(t, rec, &got)
		if len(got) != 1 {
			t.Fatalf("expected one task, got %d", len(got))
		}
		if got[0]["id"] != "task-1" || got[0]["_id"] != "task-1" {
			t.Fatalf("expected both id fields, got %v", got[0])
		}
		if got[0]["date"] != "2024-03-04T00:00:00Z" {
			t.Fatalf("unexpected date %v", got[0]["date"])
		}
		segments, ok := got[0]["timeSegments"].([]any)
		if !ok || len(segments) != 1 {
			t.Fatalf("unexpected segments %v", got[0]["timeSegments"])
		}
	})

	t.Run("list degrades to an empty array", func(t *testing.T) {
		t.Parallel()

		cases := map[string]struct {
			target string
			stub   *taskServiceStub
		}{
			"storage failure": {target: "/tasks", stub: &taskServiceStub{listErr: &application.StorageError{Op: "list tasks", Err: errors.New("boom")}}},
			"malformed month": {target: "/tasks?month=march", stub: &taskServiceStub{}},
		}
		for name, tc := range cases {
			tc := tc
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(tc.stub, quietLogger())}), http.MethodGet, tc.target, "")
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
					t.Fatalf("expected empty array, got %q", body)
				}
			})
		}
	})

	t.Run("create accepts segments and answers 201", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{}
		router := NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())})

		body := `{"date":"2024-03-04","description":"Wrote migration tests","type":"Work","timeSegments":[{"startTime":"09:00","endTime":"17:00"}],"month":1}`
		rec := serve(router, http.MethodPost, "/tasks", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(stub.lastInput.Segments) != 1 || stub.lastInput.Segments[0].Start != "09:00" {
			t.Fatalf("segments not forwarded: %+v", stub.lastInput)
		}
		if stub.lastInput.Date != "2024-03-04" || stub.lastInput.Type != "Work" {
			t.Fatalf("unexpected input %+v", stub.lastInput)
		}
	})

	t.Run("create forwards the flat legacy pair", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{}
		router := NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())})

		rec := serve(router, http.MethodPost, "/tasks", `{"date":"2024-03-04","description":"x","startTime":"09:00","endTime":"17:00"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if stub.lastInput.StartTime != "09:00" || stub.lastInput.EndTime != "17:00" || stub.lastInput.Segments != nil {
			t.Fatalf("unexpected input %+v", stub.lastInput)
		}
	})

	t.Run("create validation failure answers 400 with field errors", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{err: &application.ValidationError{
			Message:     "Minimum required: 7h 40m",
			FieldErrors: map[string]string{"timeSegments": "Minimum required: 7h 40m"},
		}}
		router := NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())})

		rec := serve(router, http.MethodPost, "/tasks", `{"date":"2024-03-04","description":"short day","type":"Work","timeSegments":[{"startTime":"09:00","endTime":"12:00"}]}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		var got errorResponse
		decodeBody(t, rec, &got)
		if got.Message != "Minimum required: 7h 40m" || got.Errors["timeSegments"] == "" {
			t.Fatalf("unexpected body %+v", got)
		}
	})

	t.Run("create rejects malformed json", func(t *testing.T) {
		t.Parallel()

		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(&taskServiceStub{}, quietLogger())}), http.MethodPost, "/tasks", `{"date":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update requires an id", func(t *testing.T) {
		t.Parallel()

		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(&taskServiceStub{}, quietLogger())}), http.MethodPut, "/tasks", `{"description":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		var got errorResponse
		decodeBody(t, rec, &got)
		if got.Message != errMissingTaskID.Error() {
			t.Fatalf("unexpected message %q", got.Message)
		}
	})

	t.Run("update accepts the legacy id and omitted fields stay nil", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{}
		router := NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())})

		rec := serve(router, http.MethodPut, "/tasks", `{"_id":"task-1","description":"Reviewed PRs"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastPatch.ID != "task-1" {
			t.Fatalf("expected legacy id, got %q", stub.lastPatch.ID)
		}
		if stub.lastPatch.Description == nil || *stub.lastPatch.Description != "Reviewed PRs" {
			t.Fatalf("description not forwarded: %+v", stub.lastPatch)
		}
		if stub.lastPatch.Date != nil || stub.lastPatch.Segments != nil || stub.lastPatch.Type != nil {
			t.Fatalf("omitted fields should stay nil: %+v", stub.lastPatch)
		}
	})

	t.Run("update of an unknown task answers 404", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{err: application.ErrNotFound}
		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())}), http.MethodPut, "/tasks", `{"id":"missing"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("delete reads the id query", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{}
		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())}), http.MethodDelete, "/tasks?id=task-1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.deletedID != "task-1" {
			t.Fatalf("unexpected id %q", stub.deletedID)
		}
		var got messageResponse
		decodeBody(t, rec, &got)
		if got.Message != "Task deleted" {
			t.Fatalf("unexpected message %q", got.Message)
		}
	})

	t.Run("delete without id answers 400", func(t *testing.T) {
		t.Parallel()

		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(&taskServiceStub{}, quietLogger())}), http.MethodDelete, "/tasks", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("storage misconfiguration gets a distinct message", func(t *testing.T) {
		t.Parallel()

		stub := &taskServiceStub{err: &application.StorageError{Op: "delete task", Err: persistence.ErrUnavailable}}
		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(stub, quietLogger())}), http.MethodDelete, "/tasks?id=task-1", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var got errorResponse
		decodeBody(t, rec, &got)
		if got.Message != storageUnavailableMessage {
			t.Fatalf("unexpected message %q", got.Message)
		}
	})

	t.Run("unsupported method answers 405", func(t *testing.T) {
		t.Parallel()

		rec := serve(NewRouter(RouterConfig{Tasks: NewTaskHandler(&taskServiceStub{}, quietLogger())}), http.MethodPatch, "/tasks", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPut) {
			t.Fatalf("unexpected Allow header %q", allow)
		}
	})
}

type profileServiceStub struct {
	profile   application.Profile
	found     bool
	created   bool
	getErr    error
	saveErr   error
	lastInput application.ProfileInput
}

func (s *profileServiceStub) GetProfile(context.Context) (application.Profile, bool, error) {
	return s.profile, s.found, s.getErr
}

func (s *profileServiceStub) SaveProfile(_ context.Context, input application.ProfileInput) (application.Profile, bool, error) {
	s.lastInput = input
	if s.saveErr != nil {
		return application.Profile{}, false, s.saveErr
	}
	return s.profile, s.created, nil
}

func TestProfileHandlers(t *testing.T) {
	t.Parallel()

	title := "Scheduling service"
	stored := application.Profile{ID: "profile-1", StudentName: "Asha", CompanyName: "Acme", Designation: "Intern", ProjectTitle: &title}

	t.Run("get answers null without a profile or on failure", func(t *testing.T) {
		t.Parallel()

		for name, stub := range map[string]*profileServiceStub{
			"missing": {},
			"failure": {getErr: errors.New("boom")},
		} {
			stub := stub
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				rec := serve(NewRouter(RouterConfig{Profile: NewProfileHandler(stub, quietLogger())}), http.MethodGet, "/profile", "")
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				if body := strings.TrimSpace(rec.Body.String()); body != "null" {
					t.Fatalf("expected null, got %q", body)
				}
			})
		}
	})

	t.Run("get returns the stored profile", func(t *testing.T) {
		t.Parallel()

		stub := &profileServiceStub{profile: stored, found: true}
		rec := serve(NewRouter(RouterConfig{Profile: NewProfileHandler(stub, quietLogger())}), http.MethodGet, "/profile", "")
		var got profileDTO
		decodeBody(t, rec, &got)
		if got.StudentName != "Asha" || got.ProjectTitle == nil || *got.ProjectTitle != title {
			t.Fatalf("unexpected profile %+v", got)
		}
	})

	t.Run("save answers 201 on create and 200 on update", func(t *testing.T) {
		t.Parallel()

		for created, status := range map[bool]int{true: http.StatusCreated, false: http.StatusOK} {
			stub := &profileServiceStub{profile: stored, created: created}
			rec := serve(NewRouter(RouterConfig{Profile: NewProfileHandler(stub, quietLogger())}), http.MethodPost, "/profile",
				`{"studentName":"Asha","companyName":"Acme","designation":"Intern"}`)
			if rec.Code != status {
				t.Fatalf("created=%v: expected %d, got %d", created, status, rec.Code)
			}
			if stub.lastInput.ProjectTitle != nil {
				t.Fatalf("omitted title should stay nil")
			}
		}
	})

	t.Run("save validation failure answers 400", func(t *testing.T) {
		t.Parallel()

		stub := &profileServiceStub{saveErr: &application.ValidationError{
			Message:     "Missing required fields",
			FieldErrors: map[string]string{"studentName": "student name is required"},
		}}
		rec := serve(NewRouter(RouterConfig{Profile: NewProfileHandler(stub, quietLogger())}), http.MethodPost, "/profile", `{"companyName":"Acme"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		var got errorResponse
		decodeBody(t, rec, &got)
		if got.Message != "Missing required fields" {
			t.Fatalf("unexpected message %q", got.Message)
		}
	})
}

type reportServiceStub struct {
	summary   report.Summary
	doc       report.Document
	result    application.ExportResult
	err       error
	lastDraft report.Draft
	month     int
	year      int
}

func (s *reportServiceStub) Summary(_ context.Context, month, year int) (report.Summary, error) {
	s.month, s.year = month, year
	return s.summary, s.err
}

func (s *reportServiceStub) Preview(_ context.Context, draft report.Draft) (report.Document, error) {
	s.lastDraft = draft
	return s.doc, s.err
}

func (s *reportServiceStub) Export(_ context.Context, draft report.Draft) (application.ExportResult, error) {
	s.lastDraft = draft
	return s.result, s.err
}

func TestReportHandlers(t *testing.T) {
	t.Parallel()

	t.Run("summary rejects a bad period", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"/summary", "/summary?month=13&year=2024", "/summary?month=3&year=abc"} {
			rec := serve(NewRouter(RouterConfig{Reports: NewReportHandler(&reportServiceStub{}, quietLogger())}), http.MethodGet, target, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", target, rec.Code)
			}
		}
	})

	t.Run("summary renders totals", func(t *testing.T) {
		t.Parallel()

		stub := &reportServiceStub{summary: report.Summary{TotalTasks: 5, WorkDays: 3, TotalWorkMinutes: 1470, HolidayCount: 1, WeekendCount: 1}}
		rec := serve(NewRouter(RouterConfig{Reports: NewReportHandler(stub, quietLogger())}), http.MethodGet, "/summary?month=3&year=2024", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got summaryDTO
		decodeBody(t, rec, &got)
		if got.TotalHours != "24h 30m" || got.DaysOff != 2 || got.WorkDays != 3 {
			t.Fatalf("unexpected summary %+v", got)
		}
		if stub.month != 3 || stub.year != 2024 {
			t.Fatalf("unexpected period %d/%d", stub.month, stub.year)
		}
	})

	t.Run("preview forwards the draft", func(t *testing.T) {
		t.Parallel()

		stub := &reportServiceStub{doc: report.Document{
			Month: 3,
			Year:  2024,
			TaskPages: []report.TaskPage{{Number: 1, Heading: "Daily Task Sheet", Rows: []report.Row{{Date: "04/03/2024", Description: "x", Duration: "8h 0m"}}}},
		}}
		rec := serve(NewRouter(RouterConfig{Reports: NewReportHandler(stub, quietLogger())}), http.MethodPost, "/reports/preview",
			`{"month":3,"year":2024,"objectives":"Learn","learningOutcomes":["Go"]}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastDraft.Objectives != "Learn" || len(stub.lastDraft.LearningOutcomes) != 1 {
			t.Fatalf("unexpected draft %+v", stub.lastDraft)
		}
		var got documentDTO
		decodeBody(t, rec, &got)
		if got.Pages != 2 || len(got.TaskPages) != 1 || len(got.TaskPages[0].Rows) != 1 {
			t.Fatalf("unexpected document %+v", got)
		}
	})

	t.Run("export streams the pdf", func(t *testing.T) {
		t.Parallel()

		stub := &reportServiceStub{result: application.ExportResult{
			FileName: "internship_report_March_2024.pdf",
			ETag:     `"abc"`,
			Pages:    2,
			Content:  []byte("%PDF-1.3 test"),
		}}
		rec := serve(NewRouter(RouterConfig{Reports: NewReportHandler(stub, quietLogger())}), http.MethodPost, "/reports/export", `{"month":3,"year":2024}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Fatalf("unexpected content type %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "internship_report_March_2024.pdf") {
			t.Fatalf("unexpected disposition %q", cd)
		}
		if rec.Header().Get("ETag") != `"abc"` {
			t.Fatalf("missing etag")
		}
		if rec.Body.String() != "%PDF-1.3 test" {
			t.Fatalf("unexpected body %q", rec.Body.String())
		}
	})

	t.Run("export honours If-None-Match", func(t *testing.T) {
		t.Parallel()

		stub := &reportServiceStub{result: application.ExportResult{FileName: "r.pdf", ETag: `"abc"`, Content: []byte("pdf")}}
		req := httptest.NewRequest(http.MethodPost, "/reports/export", strings.NewReader(`{"month":3,"year":2024}`))
		req.Header.Set("If-None-Match", `"abc"`)
		rec := httptest.NewRecorder()
		NewRouter(RouterConfig{Reports: NewReportHandler(stub, quietLogger())}).ServeHTTP(rec, req)
		if rec.Code != http.StatusNotModified {
			t.Fatalf("expected 304, got %d", rec.Code)
		}
		if rec.Body.Len() != 0 {
			t.Fatalf("expected empty body")
		}
	})

	t.Run("export failure answers 500 with a fixed message", func(t *testing.T) {
		t.Parallel()

		stub := &reportServiceStub{err: errors.Join(application.ErrExportFailed, &report.ExportError{Page: 2, Err: errors.New("font")})}
		rec := serve(NewRouter(RouterConfig{Reports: NewReportHandler(stub, quietLogger())}), http.MethodPost, "/reports/export", `{"month":3,"year":2024}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		var got errorResponse
		decodeBody(t, rec, &got)
		if got.Message != "Failed to generate PDF" {
			t.Fatalf("unexpected message %q", got.Message)
		}
	})

	t.Run("export with a bad period answers 400", func(t *testing.T) {
		t.Parallel()

		stub := &reportServiceStub{err: &application.ValidationError{Message: "Invalid month or year", FieldErrors: map[string]string{"month": "month must be between 1 and 12"}}}
		rec := serve(NewRouter(RouterConfig{Reports: NewReportHandler(stub, quietLogger())}), http.MethodPost, "/reports/export", `{"month":0,"year":2024}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		ping   error
		status int
		body   string
	}{
		"healthy":     {status: http.StatusOK, body: "ok"},
		"unreachable": {ping: persistence.ErrUnavailable, status: http.StatusServiceUnavailable, body: "unavailable"},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			handler := NewHealthHandler(pingerFunc(func(context.Context) error { return tc.ping }), quietLogger())
			rec := serve(NewRouter(RouterConfig{Health: handler}), http.MethodGet, "/healthz", "")
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var got healthResponse
			decodeBody(t, rec, &got)
			if got.Status != tc.body {
				t.Fatalf("unexpected status %q", got.Status)
			}
		})
	}
}
