package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/service"
	"etarefas/internal/state"
)

// fetchTasks reloads the collection through the gateway and returns the
// resulting store state.
func fetchTasks(ctx context.Context, gw *gateway.Gateway) (state.State, error) {
	if err := awaitIntent(ctx, gw, gw.FetchAll(ctx)); err != nil {
		return state.State{}, err
	}
	return gw.Store().Snapshot(), nil
}

// awaitIntent waits for id to finish and reports the failure the store
// recorded for it, if any.
func awaitIntent(ctx context.Context, gw *gateway.Gateway, id state.IntentID) error {
	if err := gw.Await(ctx, id); err != nil {
		return service.Transportf(err, "interrupted: %v", err)
	}
	// Commands issue one intent at a time, so the latest error is ours.
	if serr := gw.Store().Snapshot().Err(); serr != nil {
		return serr
	}
	return nil
}

// resolveTask finds the task a reference points at.
func resolveTask(s state.State, ref TaskRef) (service.Task, error) {
	if ref.IsID {
		task, ok := s.Find(ref.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("task not found: #%d", ref.ID)
		}
		return task, nil
	}
	task, ok := s.At(ref.TaskNum)
	if !ok {
		return service.Task{}, fmt.Errorf("task number out of range: %d", ref.TaskNum)
	}
	return task, nil
}

// lookupTask parses args, fetches the collection and resolves the reference.
// On failure it prints the error and returns a non-zero exit code.
func lookupTask(ctx context.Context, gw *gateway.Gateway, args []string, errOut io.Writer) (service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	s, err := fetchTasks(ctx, gw)
	if err != nil {
		return service.Task{}, reportError(errOut, err)
	}

	task, err := resolveTask(s, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}

// reportError prints a failed intent and maps its kind to an exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
