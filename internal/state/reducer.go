package state

import (
	"maps"

	"etarefas/internal/service"
)

// Apply returns the state that follows s after t. It is total: transitions
// with an unknown Kind return s unchanged.
func Apply(s State, t Transition) State {
	switch t.Kind {
	case RequestStarted:
		s.pending = withPending(s.pending, t.Intent)
		s.err = nil

	case FetchSucceeded:
		s.pending = withoutPending(s.pending, t.Intent)
		s.tasks = uniqueTasks(t.Tasks)

	case CreateSucceeded:
		s.pending = withoutPending(s.pending, t.Intent)
		if i := s.index(t.Task.ID); i >= 0 {
			s.tasks = replaceAt(s.tasks, i, t.Task)
		} else {
			next := make([]service.Task, len(s.tasks), len(s.tasks)+1)
			copy(next, s.tasks)
			s.tasks = append(next, t.Task)
		}

	case UpdateSucceeded:
		s.pending = withoutPending(s.pending, t.Intent)
		if i := s.index(t.Task.ID); i >= 0 {
			s.tasks = replaceAt(s.tasks, i, t.Task)
		}

	case DeleteSucceeded:
		s.pending = withoutPending(s.pending, t.Intent)
		if i := s.index(t.ID); i >= 0 {
			next := make([]service.Task, 0, len(s.tasks)-1)
			next = append(next, s.tasks[:i]...)
			s.tasks = append(next, s.tasks[i+1:]...)
		}

	case RequestFailed:
		s.pending = withoutPending(s.pending, t.Intent)
		s.err = t.Err

	default:
		// Unknown transitions are ignored.
	}
	return s
}

// Replay folds transitions over the initial state.
func Replay(transitions ...Transition) State {
	s := Initial()
	for _, t := range transitions {
		s = Apply(s, t)
	}
	return s
}

func withPending(pending map[IntentID]struct{}, id IntentID) map[IntentID]struct{} {
	next := make(map[IntentID]struct{}, len(pending)+1)
	maps.Copy(next, pending)
	next[id] = struct{}{}
	return next
}

func withoutPending(pending map[IntentID]struct{}, id IntentID) map[IntentID]struct{} {
	if _, ok := pending[id]; !ok {
		return pending
	}
	if len(pending) == 1 {
		return nil
	}
	next := maps.Clone(pending)
	delete(next, id)
	return next
}

func replaceAt(tasks []service.Task, i int, t service.Task) []service.Task {
	next := make([]service.Task, len(tasks))
	copy(next, tasks)
	next[i] = t
	return next
}

// uniqueTasks copies tasks, keeping the first occurrence of each ID.
func uniqueTasks(tasks []service.Task) []service.Task {
	seen := make(map[service.TaskID]struct{}, len(tasks))
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
