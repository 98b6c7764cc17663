package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var referenceNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return referenceNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

type taskRepoStub struct {
	mu    sync.Mutex
	tasks map[string]Task

	createErr error
	getErr    error
	updateErr error
	deleteErr error
	listErr   error

	listCalls  int
	lastFilter TaskFilter
	updated    []Task
}

func newTaskRepoStub(tasks ...Task) *taskRepoStub {
	stub := &taskRepoStub{tasks: make(map[string]Task)}
	for _, task := range tasks {
		stub.tasks[task.ID] = cloneTask(task)
	}
	return stub
}

func (r *taskRepoStub) CreateTask(ctx context.Context, task Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return Task{}, r.createErr
	}
	r.tasks[task.ID] = cloneTask(task)
	return cloneTask(task), nil
}

func (r *taskRepoStub) GetTask(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return Task{}, r.getErr
	}
	task, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return cloneTask(task), nil
}

func (r *taskRepoStub) UpdateTask(ctx context.Context, task Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return Task{}, r.updateErr
	}
	if _, ok := r.tasks[task.ID]; !ok {
		return Task{}, ErrNotFound
	}
	r.tasks[task.ID] = cloneTask(task)
	r.updated = append(r.updated, cloneTask(task))
	return cloneTask(task), nil
}

func (r *taskRepoStub) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *taskRepoStub) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastFilter = filter
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []Task
	for _, task := range r.tasks {
		if filter.Month != nil && task.Month != *filter.Month {
			continue
		}
		if filter.Year != nil && task.Year != *filter.Year {
			continue
		}
		out = append(out, cloneTask(task))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type profileRepoStub struct {
	profile *Profile

	getErr    error
	upsertErr error
	upserts   int
}

func (r *profileRepoStub) GetProfile(ctx context.Context) (Profile, error) {
	if r.getErr != nil {
		return Profile{}, r.getErr
	}
	if r.profile == nil {
		return Profile{}, ErrNotFound
	}
	return *r.profile, nil
}

func (r *profileRepoStub) UpsertProfile(ctx context.Context, profile Profile) (Profile, bool, error) {
	if r.upsertErr != nil {
		return Profile{}, false, r.upsertErr
	}
	r.upserts++
	if r.profile == nil {
		stored := profile
		r.profile = &stored
		return stored, true, nil
	}
	stored := profile
	stored.ID = r.profile.ID
	stored.CreatedAt = r.profile.CreatedAt
	if stored.ProjectTitle == nil {
		stored.ProjectTitle = cloneString(r.profile.ProjectTitle)
	}
	r.profile = &stored
	return stored, false, nil
}
