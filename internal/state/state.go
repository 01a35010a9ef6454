// Package state holds the canonical task collection and its request phase.
//
// A State value is immutable: Apply returns a new State for every transition and
// never touches the slice or set held by the previous one. Container owns the
// current State for a running program and serializes transitions into it.
package state

import (
	"slices"

	"etarefas/internal/service"
)

// IntentID identifies one caller-issued intent (fetch, create, update, delete).
type IntentID string

// State is a snapshot of the task collection.
type State struct {
	tasks   []service.Task
	pending map[IntentID]struct{}
	err     *service.Error
}

// Initial returns the empty state: no tasks, nothing in flight, no error.
func Initial() State {
	return State{}
}

// Tasks returns a copy of the tasks in server order.
func (s State) Tasks() []service.Task {
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s State) Len() int {
	return len(s.tasks)
}

// Find returns the task with the given ID.
func (s State) Find(id service.TaskID) (service.Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return service.Task{}, false
}

// At returns the task at the 1-based position n.
func (s State) At(n int) (service.Task, bool) {
	if n < 1 || n > len(s.tasks) {
		return service.Task{}, false
	}
	return s.tasks[n-1], true
}

// InFlight reports whether at least one intent is outstanding. It does not say
// which; use Pending for that.
func (s State) InFlight() bool {
	return len(s.pending) > 0
}

// Pending reports whether the given intent is still outstanding.
func (s State) Pending(id IntentID) bool {
	_, ok := s.pending[id]
	return ok
}

// PendingCount returns the number of outstanding intents.
func (s State) PendingCount() int {
	return len(s.pending)
}

// Err returns the most recent failure, or nil. It is cleared by the next
// RequestStarted.
func (s State) Err() *service.Error {
	return s.err
}

func (s State) index(id service.TaskID) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}
