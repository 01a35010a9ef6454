// Package service defines the backend-agnostic interface for task operations.
package service

import "strings"

// TaskID identifies a task. IDs are assigned by the remote store.
type TaskID int64

// Status is the lifecycle status of a task.
type Status string

const (
	// StatusPending is a task that is not done yet.
	StatusPending Status = "Pendente"

	// StatusFinished is a completed task.
	StatusFinished Status = "Finalizada"
)

// ParseStatus parses a status name. Accepts the wire values and English aliases,
// case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pendente", "pending", "open":
		return StatusPending, true
	case "finalizada", "finished", "done", "completed":
		return StatusFinished, true
	default:
		return "", false
	}
}

// StatusFor returns the status matching a completion flag.
func StatusFor(completed bool) Status {
	if completed {
		return StatusFinished
	}
	return StatusPending
}

// Task represents a single task as stored remotely.
type Task struct {
	ID          TaskID
	Title       string
	Description string
	Status      Status

	// PhotoURL references the stored photo. Empty if the task has none.
	PhotoURL string

	// PhotoPassword is the photo passphrase as stored remotely (hashed by the
	// server). Empty if the photo is not protected.
	PhotoPassword string
}

// Completed reports whether the task is finished.
func (t Task) Completed() bool {
	return t.Status == StatusFinished
}

// HasPhoto reports whether the task has a stored photo.
func (t Task) HasPhoto() bool {
	return t.PhotoURL != ""
}

// Record returns a full replacement record carrying the task's current fields.
// The photo payload is not included; the server keeps the stored one.
func (t Task) Record() Record {
	return Record{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
}

// Photo is an opaque photo payload sent alongside a record.
type Photo struct {
	Filename string
	Content  []byte
}

// Record is the full set of fields sent when creating or replacing a task.
type Record struct {
	Title         string
	Description   string
	Status        Status
	Photo         *Photo // nil if no photo is attached
	PhotoPassword string // empty if the photo is not protected
}

// Completed reports whether the record describes a finished task.
func (r Record) Completed() bool {
	return r.Status == StatusFinished
}
