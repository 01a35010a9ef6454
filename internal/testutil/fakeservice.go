// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"slices"
	"sync"

	"etarefas/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID service.TaskID
	photos map[string]fakePhoto // photo URL -> photo
	calls  []string

	// Error injection for testing
	ListErr    error
	CreateErr  error
	ReplaceErr error
	DeleteErr  error
	PhotoErr   error

	// Hooks run at the start of each call, before any state is touched.
	// Tests use them to block a call or control completion order.
	BeforeList    func(ctx context.Context)
	BeforeCreate  func(ctx context.Context, rec service.Record)
	BeforeReplace func(ctx context.Context, id service.TaskID)
	BeforeDelete  func(ctx context.Context, id service.TaskID)
}

type fakePhoto struct {
	content  []byte
	password string
}

// NewFakeService creates an empty FakeService. IDs start at 1.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		photos: make(map[string]fakePhoto),
	}
}

// AddTask adds a task with the next free ID and returns it.
func (f *FakeService) AddTask(title, description string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: f.nextID, Title: title, Description: description, Status: status}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// AddPhoto attaches a stored photo to the task with the given ID.
func (f *FakeService) AddPhoto(id service.TaskID, filename string, content []byte, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.storePhotoLocked(&f.tasks[i], service.Photo{Filename: filename, Content: content}, password)
			return
		}
	}
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// Calls returns the names of the calls made so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *FakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.BeforeList != nil {
		f.BeforeList(ctx)
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, rec service.Record) (service.Task, error) {
	f.record("CreateTask")
	if f.BeforeCreate != nil {
		f.BeforeCreate(ctx, rec)
	}
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	if rec.Title == "" || rec.Description == "" {
		return service.Task{}, service.Validationf(nil, "title and description are required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          f.nextID,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      service.StatusFor(rec.Completed()),
	}
	f.nextID++
	if rec.Photo != nil {
		f.storePhotoLocked(&t, *rec.Photo, rec.PhotoPassword)
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// ReplaceTask implements service.Service.
func (f *FakeService) ReplaceTask(ctx context.Context, id service.TaskID, rec service.Record) (service.Task, error) {
	f.record("ReplaceTask")
	if f.BeforeReplace != nil {
		f.BeforeReplace(ctx, id)
	}
	if f.ReplaceErr != nil {
		return service.Task{}, f.ReplaceErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		t.Title = rec.Title
		t.Description = rec.Description
		t.Status = service.StatusFor(rec.Completed())
		if rec.Photo != nil {
			f.storePhotoLocked(t, *rec.Photo, rec.PhotoPassword)
		} else if rec.PhotoPassword != "" && t.PhotoURL != "" {
			p := f.photos[t.PhotoURL]
			p.password = rec.PhotoPassword
			f.photos[t.PhotoURL] = p
			t.PhotoPassword = rec.PhotoPassword
		}
		return *t, nil
	}
	return service.Task{}, service.NotFoundf("task %d not found", id)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id service.TaskID) error {
	f.record("DeleteTask")
	if f.BeforeDelete != nil {
		f.BeforeDelete(ctx, id)
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.NotFoundf("task %d not found", id)
}

// FetchPhoto implements service.Service.
func (f *FakeService) FetchPhoto(ctx context.Context, photoURL, password string) ([]byte, error) {
	f.record("FetchPhoto")
	if f.PhotoErr != nil {
		return nil, f.PhotoErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[photoURL]
	if !ok {
		return nil, service.NotFoundf("photo %s not found", photoURL)
	}
	if p.password != "" && p.password != password {
		return nil, service.Unauthorizedf("photo password required or incorrect")
	}
	return slices.Clone(p.content), nil
}

func (f *FakeService) storePhotoLocked(t *service.Task, photo service.Photo, password string) {
	url := "/uploads/" + photo.Filename
	f.photos[url] = fakePhoto{content: slices.Clone(photo.Content), password: password}
	t.PhotoURL = url
	t.PhotoPassword = password
}
