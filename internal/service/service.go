// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for remote task store operations.
// The gateway and commands never talk HTTP directly.
type Service interface {
	// ListTasks returns all tasks in server order (no client-side sorting).
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it with its assigned ID.
	CreateTask(ctx context.Context, rec Record) (Task, error)

	// ReplaceTask replaces the task with the given ID by rec.
	// Returns an ErrNotFound error if no such task exists.
	ReplaceTask(ctx context.Context, id TaskID, rec Record) (Task, error)

	// DeleteTask deletes the task with the given ID.
	// Returns an ErrNotFound error if no such task exists.
	DeleteTask(ctx context.Context, id TaskID) error

	// FetchPhoto downloads the photo stored at photoURL.
	// password may be empty for unprotected photos.
	FetchPhoto(ctx context.Context, photoURL, password string) ([]byte, error)
}
