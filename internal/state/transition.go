package state

import "etarefas/internal/service"

// Kind tags a transition.
type Kind string

const (
	RequestStarted  Kind = "request_started"
	FetchSucceeded  Kind = "fetch_succeeded"
	CreateSucceeded Kind = "create_succeeded"
	UpdateSucceeded Kind = "update_succeeded"
	DeleteSucceeded Kind = "delete_succeeded"
	RequestFailed   Kind = "request_failed"
)

// IsTerminal reports whether k closes an intent's in-flight window.
func IsTerminal(k Kind) bool {
	switch k {
	case FetchSucceeded, CreateSucceeded, UpdateSucceeded, DeleteSucceeded, RequestFailed:
		return true
	default:
		return false
	}
}

// Transition is a discrete state-change event consumed by Apply.
// Only the fields relevant to Kind are set.
type Transition struct {
	Kind   Kind
	Intent IntentID

	Tasks []service.Task // FetchSucceeded
	Task  service.Task   // CreateSucceeded, UpdateSucceeded
	ID    service.TaskID // DeleteSucceeded
	Err   *service.Error // RequestFailed
}

// Started opens the in-flight window of an intent.
func Started(intent IntentID) Transition {
	return Transition{Kind: RequestStarted, Intent: intent}
}

// Fetched replaces the collection with tasks.
func Fetched(intent IntentID, tasks []service.Task) Transition {
	return Transition{Kind: FetchSucceeded, Intent: intent, Tasks: tasks}
}

// Created appends a newly created task.
func Created(intent IntentID, task service.Task) Transition {
	return Transition{Kind: CreateSucceeded, Intent: intent, Task: task}
}

// Updated replaces the task with the same ID.
func Updated(intent IntentID, task service.Task) Transition {
	return Transition{Kind: UpdateSucceeded, Intent: intent, Task: task}
}

// Deleted removes the task with the given ID.
func Deleted(intent IntentID, id service.TaskID) Transition {
	return Transition{Kind: DeleteSucceeded, Intent: intent, ID: id}
}

// Failed records err as the latest failure.
func Failed(intent IntentID, err *service.Error) Transition {
	return Transition{Kind: RequestFailed, Intent: intent, Err: err}
}
